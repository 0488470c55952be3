// Package cloud implements the REST-backed storage adapter for the
// mindfold sync service. It owns the credential lifecycle, talks to a
// markdown-centric map API, and reconstructs a folder view from the
// service's flat key space.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mindfoldco/mindfold/pkg/credentials"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const backendName = "cloud"

// newMapSentinel is the editor's placeholder id for a not-yet-saved map.
// It must never reach the server.
const newMapSentinel = "new"

// Config holds construction parameters for the cloud adapter.
type Config struct {
	// BaseURL is the sync service endpoint, e.g. "https://sync.mindfold.app".
	BaseURL string

	// Credentials persists the token/user pair across restarts.
	Credentials *credentials.Manager

	Codec  mapdoc.Codec
	Logger *slog.Logger

	// Client overrides the HTTP transport. Defaults to an http.Client
	// with a 30 second timeout.
	Client Doer
}

// Adapter is the REST-backed storage adapter. One live instance exists
// per process, owned by the workspace service.
type Adapter struct {
	storage.Base

	baseURL string
	client  Doer
	creds   *credentials.Manager
	codec   mapdoc.Codec
	logger  *slog.Logger

	// mu guards token and user. Logout runs on a detached goroutine, so
	// the session pair is read and written across goroutines.
	mu    sync.RWMutex
	token string
	user  *mapdoc.CloudUser

	// virtualFolders tracks folders the user created that contain no
	// files yet. In-memory only: they do not survive a restart.
	virtualFolders map[string]struct{}

	initialized bool

	// onRestore is invoked after Initialize restores a valid session,
	// letting the workspace service re-register the cloud workspace.
	onRestore func()
}

var (
	_ storage.Adapter       = (*Adapter)(nil)
	_ storage.ExplorerStore = (*Adapter)(nil)
	_ storage.MarkdownStore = (*Adapter)(nil)
	_ storage.ImageStore    = (*Adapter)(nil)
)

// New constructs an uninitialized cloud adapter.
func New(cfg Config) *Adapter {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Adapter{
		Base:           storage.Base{PathPrefix: mapdoc.CloudWorkspaceID},
		baseURL:        cfg.BaseURL,
		client:         client,
		creds:          cfg.Credentials,
		codec:          cfg.Codec,
		logger:         cfg.Logger,
		virtualFolders: make(map[string]struct{}),
	}
}

// OnSessionRestored registers a hook invoked when Initialize restores a
// valid persisted session.
func (a *Adapter) OnSessionRestored(fn func()) {
	a.onRestore = fn
}

// Initialized reports whether Initialize has completed.
func (a *Adapter) Initialized() bool {
	return a.initialized
}

// Initialize restores persisted credentials and revalidates them against
// the server. A failed probe discards the credentials: persisted state is
// provisional, never trusted blindly. Idempotent; repeated calls do not
// re-issue the probe.
func (a *Adapter) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}

	if a.creds != nil {
		token, user, err := a.creds.Session()
		if err != nil {
			return err
		}

		if token != "" && user != nil {
			a.setSession(token, user)

			if err := a.verifyAuth(ctx); err != nil {
				a.logger.Debug("persisted session rejected, discarding", "err", err)
				a.setSession("", nil)
				if clearErr := a.creds.Clear(); clearErr != nil {
					return clearErr
				}
			} else if a.onRestore != nil {
				a.onRestore()
			}
		}
	}

	a.initialized = true
	return nil
}

// Cleanup drops in-memory session state. Persisted credentials are left
// for the next session to revalidate.
func (a *Adapter) Cleanup() error {
	a.initialized = false
	a.setSession("", nil)
	a.virtualFolders = make(map[string]struct{})
	return nil
}

// session returns the held token/user pair.
func (a *Adapter) session() (string, *mapdoc.CloudUser) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token, a.user
}

func (a *Adapter) setSession(token string, user *mapdoc.CloudUser) {
	a.mu.Lock()
	a.token = token
	a.user = user
	a.mu.Unlock()
}

// IsAuthenticated reports whether both a token and a user are held in
// memory.
func (a *Adapter) IsAuthenticated() bool {
	token, user := a.session()
	return token != "" && user != nil
}

// User returns the authenticated user, nil when logged out.
func (a *Adapter) User() *mapdoc.CloudUser {
	_, user := a.session()
	return user
}

// Register creates an account. Authentication failures are values, not
// errors: the caller renders resp.Error inline.
func (a *Adapter) Register(ctx context.Context, email, password string) mapdoc.AuthResponse {
	return a.authenticate(ctx, "/api/auth/register", email, password)
}

// Login authenticates an existing account.
func (a *Adapter) Login(ctx context.Context, email, password string) mapdoc.AuthResponse {
	return a.authenticate(ctx, "/api/auth/login", email, password)
}

func (a *Adapter) authenticate(ctx context.Context, path, email, password string) mapdoc.AuthResponse {
	var resp authResponse
	err := a.sendJSON(ctx, http.MethodPost, path, authRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return mapdoc.AuthResponse{Success: false, Error: err.Error()}
	}

	if resp.Token == "" || resp.User == nil {
		return mapdoc.AuthResponse{Success: false, Error: "malformed auth response"}
	}

	a.setSession(resp.Token, resp.User)

	if a.creds != nil {
		if err := a.creds.SetSession(resp.Token, resp.User); err != nil {
			a.logger.Warn("persisting session failed", "err", err)
		}
	}

	return mapdoc.AuthResponse{Success: true, Token: resp.Token, User: resp.User}
}

// Logout best-effort notifies the server, then unconditionally clears the
// in-memory and persisted session. Failure to reach the server never
// blocks forgetting local credentials.
func (a *Adapter) Logout(ctx context.Context) error {
	if a.IsAuthenticated() {
		if _, err := a.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, ""); err != nil {
			a.logger.Debug("server logout failed", "err", err)
		}
	}

	a.setSession("", nil)

	if a.creds == nil {
		return nil
	}

	return a.creds.Clear()
}

// verifyAuth probes GET /api/auth/me with the held token.
func (a *Adapter) verifyAuth(ctx context.Context) error {
	var resp meResponse
	if err := a.getJSON(ctx, "/api/auth/me", &resp); err != nil {
		return err
	}

	if resp.User == nil {
		return errors.New("malformed auth probe response")
	}

	a.mu.Lock()
	a.user = resp.User
	a.mu.Unlock()
	return nil
}

// LoadAllMaps lists remote documents, then fetches each one's content
// individually and parses it. The list-then-detail contract is part of
// the API shape; callers see one fully hydrated map per descriptor.
// Unauthenticated calls degrade to an empty result.
func (a *Adapter) LoadAllMaps(ctx context.Context) ([]*mapdoc.MindMapData, error) {
	if !a.IsAuthenticated() {
		return nil, nil
	}

	var list listMapsResponse
	if err := a.getJSON(ctx, "/api/maps", &list); err != nil {
		return nil, err
	}

	maps := make([]*mapdoc.MindMapData, 0, len(list.Maps))
	for _, desc := range list.Maps {
		var m mapResponse
		if err := a.getJSON(ctx, "/api/maps/"+url.PathEscape(desc.ID), &m); err != nil {
			return nil, fmt.Errorf("fetching map %s: %w", desc.ID, err)
		}

		data, err := a.codec.Parse(m.Content)
		if err != nil {
			return nil, fmt.Errorf("parsing map %s: %w", desc.ID, err)
		}

		data.ID = mapdoc.MapIdentifier{MapID: desc.ID, WorkspaceID: mapdoc.CloudWorkspaceID}
		data.UpdatedAt = m.UpdatedAt
		maps = append(maps, data)
	}

	return maps, nil
}

// AddMapToList serializes the map and saves it.
func (a *Adapter) AddMapToList(ctx context.Context, m *mapdoc.MindMapData) error {
	if m == nil {
		return errors.New("cannot save nil map")
	}

	md, err := a.codec.Serialize(m)
	if err != nil {
		return err
	}

	return a.SaveMapMarkdown(ctx, m.ID, md)
}

// RemoveMapFromList deletes the map by id.
func (a *Adapter) RemoveMapFromList(ctx context.Context, id mapdoc.MapIdentifier) error {
	if err := a.requireWritable(id.MapID); err != nil {
		return err
	}

	_, err := a.doRequest(ctx, http.MethodDelete, "/api/maps/"+url.PathEscape(id.MapID), nil, "")
	return err
}

// MapMarkdown fetches a map's raw markdown. Unauthenticated reads degrade
// to empty.
func (a *Adapter) MapMarkdown(ctx context.Context, id mapdoc.MapIdentifier) (string, error) {
	if !a.IsAuthenticated() {
		return "", nil
	}

	var m mapResponse
	if err := a.getJSON(ctx, "/api/maps/"+url.PathEscape(id.MapID), &m); err != nil {
		return "", err
	}

	return m.Content, nil
}

// MapLastModified returns the server's updatedAt for the map.
func (a *Adapter) MapLastModified(ctx context.Context, id mapdoc.MapIdentifier) (time.Time, error) {
	if !a.IsAuthenticated() {
		return time.Time{}, nil
	}

	var m mapResponse
	if err := a.getJSON(ctx, "/api/maps/"+url.PathEscape(id.MapID), &m); err != nil {
		return time.Time{}, err
	}

	return m.UpdatedAt, nil
}

// SaveMapMarkdown uploads markdown under the map id. The title sent
// alongside is derived from the content by the shared extraction rule.
func (a *Adapter) SaveMapMarkdown(ctx context.Context, id mapdoc.MapIdentifier, markdown string) error {
	if err := a.requireWritable(id.MapID); err != nil {
		return err
	}

	body := saveMapRequest{
		Title:   storage.ExtractTitleFromMarkdown(markdown),
		Content: markdown,
	}

	return a.sendJSON(ctx, http.MethodPut, "/api/maps/"+url.PathEscape(id.MapID), body, nil)
}

// requireWritable enforces the write-path preconditions before any
// network I/O: a held session and a non-empty, non-sentinel map id.
func (a *Adapter) requireWritable(mapID string) error {
	if mapID == "" {
		return storage.ErrInvalidMapID{MapID: mapID, Reason: "empty map id"}
	}
	if mapID == newMapSentinel {
		return storage.ErrInvalidMapID{MapID: mapID, Reason: "unsaved map sentinel"}
	}
	if !a.IsAuthenticated() {
		return storage.ErrNotAuthenticated
	}

	return nil
}
