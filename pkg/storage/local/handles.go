package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// legacyHandleID is the single-record key used before multi-workspace
// support. A record stored under it is migrated to the default workspace
// on open.
const legacyHandleID = "root-folder-handle"

// Handle is one remembered workspace directory: the Go rendition of the
// browser's persisted directory handle.
type Handle struct {
	ID   string
	Name string
	Root string
}

// HandleStore durably remembers workspace directories across sessions,
// one row per workspace, keyed by workspace id.
type HandleStore struct {
	db *sql.DB
}

// OpenHandleStore opens (creating if needed) the handle database at path.
// ":memory:" is accepted for tests.
func OpenHandleStore(path string) (*HandleStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening handle store: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS workspace_handles (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		root TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating handle schema: %w", err)
	}

	s := &HandleStore{db: db}
	if err := s.migrateLegacy(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrateLegacy promotes a pre-multi-workspace root-folder-handle record
// to the default workspace id when no default record exists yet.
func (s *HandleStore) migrateLegacy(ctx context.Context) error {
	legacy, err := s.Get(ctx, legacyHandleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if _, err := s.Get(ctx, defaultWorkspaceID); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE workspace_handles SET id = ? WHERE id = ?`,
		defaultWorkspaceID, legacy.ID)
	if err != nil {
		return fmt.Errorf("migrating legacy handle: %w", err)
	}

	return nil
}

// Get returns the handle for a workspace id. sql.ErrNoRows when absent.
func (s *HandleStore) Get(ctx context.Context, id string) (Handle, error) {
	var h Handle
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, root FROM workspace_handles WHERE id = ?`, id).
		Scan(&h.ID, &h.Name, &h.Root)
	if err != nil {
		return Handle{}, err
	}

	return h, nil
}

// Put inserts or replaces a handle.
func (s *HandleStore) Put(ctx context.Context, h Handle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspace_handles (id, name, root) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, root = excluded.root`,
		h.ID, h.Name, h.Root)
	if err != nil {
		return fmt.Errorf("storing handle %s: %w", h.ID, err)
	}

	return nil
}

// Delete removes a handle. Deleting an absent handle is a no-op.
func (s *HandleStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM workspace_handles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting handle %s: %w", id, err)
	}

	return nil
}

// List returns all handles ordered by name.
func (s *HandleStore) List(ctx context.Context) ([]Handle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, root FROM workspace_handles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing handles: %w", err)
	}
	defer rows.Close()

	var handles []Handle
	for rows.Next() {
		var h Handle
		if err := rows.Scan(&h.ID, &h.Name, &h.Root); err != nil {
			return nil, fmt.Errorf("scanning handle: %w", err)
		}
		handles = append(handles, h)
	}

	return handles, rows.Err()
}

// Close closes the underlying database.
func (s *HandleStore) Close() error {
	return s.db.Close()
}
