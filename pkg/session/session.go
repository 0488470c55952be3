// Package session wires the configuration, credential and storage layers
// into a ready-to-use adapter stack for one CLI invocation.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mindfoldco/mindfold/pkg/config"
	"github.com/mindfoldco/mindfold/pkg/credentials"
	"github.com/mindfoldco/mindfold/pkg/dotdir"
	"github.com/mindfoldco/mindfold/pkg/logger"
	"github.com/mindfoldco/mindfold/pkg/markdown"
	"github.com/mindfoldco/mindfold/pkg/storage"
	"github.com/mindfoldco/mindfold/pkg/storage/cloud"
	"github.com/mindfoldco/mindfold/pkg/storage/factory"
	"github.com/mindfoldco/mindfold/pkg/storage/local"
	"github.com/mindfoldco/mindfold/pkg/workspace"
)

// Options control how a session is opened.
type Options struct {
	// ConfigDir overrides dotdir resolution when non-empty.
	ConfigDir string

	// Debug enables debug logging.
	Debug bool

	// Mode overrides the configured session mode when non-empty.
	Mode string
}

// Session is one opened adapter stack. Callers must Close it.
type Session struct {
	Adapter     storage.Adapter
	Service     *workspace.Service
	Credentials *credentials.Manager
	Logger      *slog.Logger

	// Manager is set only in local+cloud mode.
	Manager *workspace.AdapterManager

	configDir string
}

// Open resolves configuration, builds the adapter stack for the
// configured mode and initializes it.
func Open(ctx context.Context, opts Options) (*Session, error) {
	ddm := dotdir.NewManager()
	configDir, err := ddm.Target(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}

	log := logger.New(
		logger.WithDebug(opts.Debug),
		logger.WithPretty(true),
	)

	mode := workspace.Mode(v.GetString("session.mode"))
	if opts.Mode != "" {
		mode = workspace.Mode(opts.Mode)
	}

	handleDB := v.GetString("storage.handle_db_path")
	if handleDB == "" {
		handleDB = filepath.Join(configDir, "handles.db")
	}

	codec := markdown.NewCodec()

	localCfg := local.Config{
		Root:         v.GetString("storage.local_root"),
		HandleDBPath: handleDB,
		Codec:        codec,
		Logger:       log,
	}

	s := &Session{
		Logger:    log,
		configDir: configDir,
	}

	s.Credentials, err = credentials.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	s.Service, err = workspace.NewService(configDir, log)
	if err != nil {
		return nil, fmt.Errorf("loading workspace registry: %w", err)
	}

	s.Adapter, err = factory.New(factory.Config{
		Mode:  mode,
		Local: localCfg,
		Cloud: cloud.Config{
			BaseURL:     v.GetString("cloud.base_url"),
			Credentials: s.Credentials,
			Codec:       codec,
			Logger:      log,
		},
		Service: s.Service,
	})
	if err != nil {
		return nil, err
	}

	if mgr, ok := s.Adapter.(*workspace.AdapterManager); ok {
		s.Manager = mgr
	}

	if err := s.Adapter.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	return s, nil
}

// ConfigDir returns the resolved dotdir path.
func (s *Session) ConfigDir() string {
	return s.configDir
}

// Cloud returns the shared cloud adapter, or nil outside local+cloud mode.
func (s *Session) Cloud() *cloud.Adapter {
	return s.Service.CloudAdapter()
}

// Close releases session-held resources. Persisted credentials survive.
func (s *Session) Close() error {
	return s.Adapter.Cleanup()
}
