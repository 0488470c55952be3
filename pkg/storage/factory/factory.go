// Package factory constructs storage adapters from a declarative
// configuration. It is the single simple entry point for subsystems that
// need storage without full multi-workspace orchestration.
package factory

import (
	"fmt"

	"github.com/mindfoldco/mindfold/pkg/storage"
	"github.com/mindfoldco/mindfold/pkg/storage/cloud"
	"github.com/mindfoldco/mindfold/pkg/storage/local"
	"github.com/mindfoldco/mindfold/pkg/workspace"
)

// Config declares which adapter set to build.
type Config struct {
	// Mode is "local" or "local+cloud". Anything else is a hard error.
	Mode workspace.Mode

	Local local.Config
	Cloud cloud.Config

	// Service is required in local+cloud mode: it owns the shared cloud
	// adapter instance.
	Service *workspace.Service
}

// New builds an adapter for the given configuration. The returned adapter
// is not yet initialized; the caller drives Initialize and Cleanup.
func New(cfg Config) (storage.Adapter, error) {
	switch cfg.Mode {
	case workspace.ModeLocal:
		return local.New(cfg.Local), nil

	case workspace.ModeLocalCloud:
		mgr, err := workspace.NewAdapterManager(workspace.ManagerConfig{
			Mode:    workspace.ModeLocalCloud,
			Local:   cfg.Local,
			Cloud:   cfg.Cloud,
			Service: cfg.Service,
		})
		if err != nil {
			return nil, err
		}
		return mgr, nil

	default:
		return nil, fmt.Errorf("unsupported storage mode: %q", cfg.Mode)
	}
}
