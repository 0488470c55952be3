// Package workspace holds the process-wide workspace registry and the
// session-scoped adapter manager. The registry is the only component
// permitted to hold a durable reference to the live cloud adapter; every
// other component obtains it from here.
package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/mindfoldco/mindfold/pkg/dotdir"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage/cloud"
)

const manifestFile = "workspaces.toml"

// manifest is the minimal persisted registry state: ids and names only,
// never credentials and never adapter references.
type manifest struct {
	Workspaces []mapdoc.Workspace `toml:"workspace"`
}

// Listener is notified after every registry mutation. Listeners always
// observe a consistent post-mutation snapshot.
type Listener func()

// Service is the workspace registry. It is constructed once at
// application start and passed by reference to anything that needs it;
// there is no package-level instance.
type Service struct {
	mu           sync.Mutex
	workspaces   map[string]mapdoc.Workspace
	cloudAdapter *cloud.Adapter
	listeners    map[int]Listener
	nextListener int
	manifestPath string
	logger       *slog.Logger
}

// NewService constructs the registry, restoring the persisted manifest
// when one exists. configDir overrides the dotdir resolution.
func NewService(configDir string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, err
	}

	s := &Service{
		workspaces:   make(map[string]mapdoc.Workspace),
		listeners:    make(map[int]Listener),
		manifestPath: filepath.Join(target, manifestFile),
		logger:       logger,
	}

	if err := s.loadManifest(); err != nil {
		return nil, err
	}

	return s, nil
}

// Subscribe registers a change listener and returns its remover.
func (s *Service) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Workspaces returns a snapshot of all registered workspaces.
func (s *Service) Workspaces() []mapdoc.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]mapdoc.Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		out = append(out, ws)
	}

	return out
}

// Workspace returns the registered workspace with the given id.
func (s *Service) Workspace(id string) (mapdoc.Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	return ws, ok
}

// AddLocalWorkspace registers a local workspace and persists the manifest.
func (s *Service) AddLocalWorkspace(ws mapdoc.Workspace) error {
	if ws.Type != mapdoc.WorkspaceLocal {
		return fmt.Errorf("workspace %q is not local", ws.ID)
	}

	s.mu.Lock()
	s.workspaces[ws.ID] = ws
	err := s.persistManifestLocked()
	listeners := s.snapshotListenersLocked()
	s.mu.Unlock()

	s.notify(listeners)
	return err
}

// AddCloudWorkspace registers the single cloud workspace for the given
// user. The entry is never removable via the generic remove path.
func (s *Service) AddCloudWorkspace(user *mapdoc.CloudUser) error {
	if user == nil {
		return errors.New("cannot add cloud workspace without a user")
	}

	ws := mapdoc.Workspace{
		ID:        mapdoc.CloudWorkspaceID,
		Name:      user.Email,
		Type:      mapdoc.WorkspaceCloud,
		Removable: false,
	}

	s.mu.Lock()
	s.workspaces[ws.ID] = ws
	err := s.persistManifestLocked()
	listeners := s.snapshotListenersLocked()
	s.mu.Unlock()

	s.notify(listeners)
	return err
}

// RemoveWorkspace unregisters a workspace. The cloud workspace is only
// removable through LogoutFromCloud.
func (s *Service) RemoveWorkspace(id string) error {
	if id == mapdoc.CloudWorkspaceID {
		return errors.New("cloud workspace can only be removed by logging out")
	}

	s.mu.Lock()
	if _, ok := s.workspaces[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown workspace: %q", id)
	}
	delete(s.workspaces, id)
	err := s.persistManifestLocked()
	listeners := s.snapshotListenersLocked()
	s.mu.Unlock()

	s.notify(listeners)
	return err
}

// SetCloudAdapter registers the shared adapter reference without
// registering a workspace entry. Called before authentication completes
// so a not-yet-authenticated adapter can be wired up early. The adapter's
// session-restore hook is pointed back at this registry.
func (s *Service) SetCloudAdapter(a *cloud.Adapter) {
	s.mu.Lock()
	s.cloudAdapter = a
	s.mu.Unlock()

	if a != nil {
		a.OnSessionRestored(func() {
			_ = s.RestoreCloudWorkspace()
		})
	}
}

// RestoreCloudWorkspace re-registers the cloud workspace after the
// adapter restored a valid persisted session.
func (s *Service) RestoreCloudWorkspace() error {
	s.mu.Lock()
	a := s.cloudAdapter
	s.mu.Unlock()

	if a == nil || !a.IsAuthenticated() {
		return errors.New("no authenticated cloud adapter to restore")
	}

	return s.AddCloudWorkspace(a.User())
}

// LogoutFromCloud removes the cloud workspace entry and clears the
// adapter reference first, then notifies the server asynchronously.
// Local state transitions are never blocked by the network.
func (s *Service) LogoutFromCloud() error {
	s.mu.Lock()
	a := s.cloudAdapter
	s.cloudAdapter = nil
	delete(s.workspaces, mapdoc.CloudWorkspaceID)
	err := s.persistManifestLocked()
	listeners := s.snapshotListenersLocked()
	s.mu.Unlock()

	s.notify(listeners)

	if a != nil {
		go func() {
			if logoutErr := a.Logout(context.Background()); logoutErr != nil {
				s.logger.Debug("cloud logout failed", "err", logoutErr)
			}
		}()
	}

	return err
}

// CloudAdapter returns the shared cloud adapter, nil when none is wired.
func (s *Service) CloudAdapter() *cloud.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cloudAdapter
}

// IsCloudAuthenticated reports the shared adapter's auth state.
func (s *Service) IsCloudAuthenticated() bool {
	s.mu.Lock()
	a := s.cloudAdapter
	s.mu.Unlock()

	return a != nil && a.IsAuthenticated()
}

// CloudUser returns the authenticated cloud user, nil when logged out.
func (s *Service) CloudUser() *mapdoc.CloudUser {
	s.mu.Lock()
	a := s.cloudAdapter
	s.mu.Unlock()

	if a == nil {
		return nil
	}

	return a.User()
}

func (s *Service) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}

	return out
}

// notify runs outside the lock so listeners may call back into the
// registry.
func (s *Service) notify(listeners []Listener) {
	for _, fn := range listeners {
		fn()
	}
}

func (s *Service) loadManifest() error {
	data, err := os.ReadFile(s.manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading workspace manifest: %w", err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parsing workspace manifest: %w", err)
	}

	for _, ws := range m.Workspaces {
		// The cloud entry is only meaningful with a live authenticated
		// adapter; it is re-added by RestoreCloudWorkspace.
		if ws.Type == mapdoc.WorkspaceCloud {
			continue
		}
		s.workspaces[ws.ID] = ws
	}

	return nil
}

func (s *Service) persistManifestLocked() error {
	m := manifest{}
	for _, ws := range s.workspaces {
		m.Workspaces = append(m.Workspaces, ws)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encoding workspace manifest: %w", err)
	}

	if err := os.WriteFile(s.manifestPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing workspace manifest: %w", err)
	}

	return nil
}
