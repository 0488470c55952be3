package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
	"github.com/mindfoldco/mindfold/pkg/storage/cloud"
	"github.com/mindfoldco/mindfold/pkg/storage/local"
)

// Mode selects which adapters a session runs with.
type Mode string

const (
	// ModeLocal runs with only the local adapter.
	ModeLocal Mode = "local"

	// ModeLocalCloud runs with the local adapter plus the shared cloud
	// adapter.
	ModeLocalCloud Mode = "local+cloud"
)

// ManagerConfig holds construction parameters for an AdapterManager.
type ManagerConfig struct {
	Mode    Mode
	Local   local.Config
	Cloud   cloud.Config
	Service *Service
	Logger  *slog.Logger
}

// AdapterManager is the session-scoped orchestrator. It always owns a
// local adapter; in local+cloud mode it reuses (or creates and registers)
// the registry's shared cloud adapter. It is not a singleton: each
// session constructs its own.
type AdapterManager struct {
	cfg    ManagerConfig
	svc    *Service
	logger *slog.Logger

	localAdapter *local.Adapter
	current      string
	initialized  bool
}

// AdapterManager delegates the mandatory surface to the current adapter,
// so it can stand in wherever a single Adapter is expected.
var _ storage.Adapter = (*AdapterManager)(nil)

// NewAdapterManager constructs an uninitialized manager.
func NewAdapterManager(cfg ManagerConfig) (*AdapterManager, error) {
	if cfg.Service == nil {
		return nil, errors.New("adapter manager requires a workspace service")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AdapterManager{
		cfg:     cfg,
		svc:     cfg.Service,
		logger:  cfg.Logger,
		current: mapdoc.LocalWorkspaceID,
	}, nil
}

// Initialized reports whether Initialize has completed.
func (m *AdapterManager) Initialized() bool {
	return m.initialized
}

// Initialize unconditionally builds and initializes the local adapter;
// in local+cloud mode it then wires the shared cloud adapter, creating
// and registering one when the registry has none. A cloud adapter that
// comes up authenticated (restored session) is registered as a workspace.
func (m *AdapterManager) Initialize(ctx context.Context) error {
	if m.initialized {
		return nil
	}

	m.localAdapter = local.New(m.cfg.Local)
	if err := m.localAdapter.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing local adapter: %w", err)
	}

	if m.cfg.Mode == ModeLocalCloud {
		if err := m.initCloud(ctx); err != nil {
			return err
		}
	}

	m.initialized = true
	return nil
}

func (m *AdapterManager) initCloud(ctx context.Context) error {
	a := m.svc.CloudAdapter()
	if a == nil {
		a = cloud.New(m.cfg.Cloud)
		m.svc.SetCloudAdapter(a)
	}

	if !a.Initialized() {
		if err := a.Initialize(ctx); err != nil {
			return fmt.Errorf("initializing cloud adapter: %w", err)
		}
	}

	if a.IsAuthenticated() {
		if err := m.svc.AddCloudWorkspace(a.User()); err != nil {
			return err
		}
	}

	return nil
}

// Cleanup tears down both adapters this session touched.
func (m *AdapterManager) Cleanup() error {
	m.initialized = false

	var err error
	if m.localAdapter != nil {
		err = m.localAdapter.Cleanup()
		m.localAdapter = nil
	}

	if m.cfg.Mode == ModeLocalCloud {
		if a := m.svc.CloudAdapter(); a != nil {
			if cloudErr := a.Cleanup(); err == nil {
				err = cloudErr
			}
		}
	}

	return err
}

// AvailableWorkspaces merges the local adapter's workspaces with the
// cloud workspace when authenticated.
func (m *AdapterManager) AvailableWorkspaces(ctx context.Context) ([]mapdoc.Workspace, error) {
	if m.localAdapter == nil {
		return nil, errors.New("adapter manager not initialized")
	}

	workspaces, err := m.localAdapter.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}

	if m.svc.IsCloudAuthenticated() {
		if user := m.svc.CloudUser(); user != nil {
			workspaces = append(workspaces, mapdoc.Workspace{
				ID:        mapdoc.CloudWorkspaceID,
				Name:      user.Email,
				Type:      mapdoc.WorkspaceCloud,
				Removable: false,
			})
		}
	}

	return workspaces, nil
}

// CurrentAdapter returns the adapter serving the current workspace.
func (m *AdapterManager) CurrentAdapter() (storage.Adapter, error) {
	return m.AdapterForWorkspace(m.current)
}

// AdapterForWorkspace resolves which adapter serves a workspace id.
// Empty and "local" ids resolve to the local adapter; "cloud" is always
// re-resolved through the registry so a stale reference is never handed
// out; every other id is a local workspace.
func (m *AdapterManager) AdapterForWorkspace(id string) (storage.Adapter, error) {
	if m.localAdapter == nil {
		return nil, errors.New("adapter manager not initialized")
	}

	if id == mapdoc.CloudWorkspaceID {
		a := m.svc.CloudAdapter()
		if a == nil {
			return nil, errors.New("cloud workspace is not available")
		}
		return a, nil
	}

	return m.localAdapter, nil
}

// SetCurrentWorkspace switches the workspace served by CurrentAdapter.
func (m *AdapterManager) SetCurrentWorkspace(id string) error {
	if id == "" {
		id = mapdoc.LocalWorkspaceID
	}

	if id == mapdoc.CloudWorkspaceID {
		if m.svc.CloudAdapter() == nil {
			return errors.New("cloud workspace is not available")
		}
		m.current = id
		return nil
	}

	if m.localAdapter == nil {
		return errors.New("adapter manager not initialized")
	}
	if err := m.localAdapter.SetCurrentWorkspace(id); err != nil {
		return err
	}

	m.current = id
	return nil
}

// CurrentWorkspace returns the id served by CurrentAdapter.
func (m *AdapterManager) CurrentWorkspace() string {
	return m.current
}

// LoadAllMaps delegates to the current adapter.
func (m *AdapterManager) LoadAllMaps(ctx context.Context) ([]*mapdoc.MindMapData, error) {
	a, err := m.CurrentAdapter()
	if err != nil {
		return nil, err
	}

	return a.LoadAllMaps(ctx)
}

// AddMapToList delegates to the adapter owning the map's workspace.
func (m *AdapterManager) AddMapToList(ctx context.Context, data *mapdoc.MindMapData) error {
	if data == nil {
		return errors.New("cannot save nil map")
	}

	a, err := m.AdapterForWorkspace(data.ID.WorkspaceID)
	if err != nil {
		return err
	}

	return a.AddMapToList(ctx, data)
}

// RemoveMapFromList delegates to the adapter owning the map's workspace.
func (m *AdapterManager) RemoveMapFromList(ctx context.Context, id mapdoc.MapIdentifier) error {
	a, err := m.AdapterForWorkspace(id.WorkspaceID)
	if err != nil {
		return err
	}

	return a.RemoveMapFromList(ctx, id)
}

// LocalAdapter exposes the session's local adapter for callers that need
// its full extension surface.
func (m *AdapterManager) LocalAdapter() *local.Adapter {
	return m.localAdapter
}
