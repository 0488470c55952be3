// Package sqlite provides a SQLite-backed sync server store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mindfoldco/mindfold/server/store"
)

// Store implements store.Store on SQLite via the mattn/go-sqlite3 driver.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	token   TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS maps (
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE TABLE IF NOT EXISTS images (
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	path         TEXT NOT NULL,
	content_type TEXT NOT NULL,
	data         BLOB NOT NULL,
	PRIMARY KEY (user_id, path)
);
`

// New opens (creating if needed) a store at dbPath. ":memory:" is
// accepted for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) CreateUser(ctx context.Context, email string, passwordHash []byte) (*store.User, error) {
	u := &store.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, store.ErrExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	u := &store.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return u, nil
}

func (s *Store) CreateSession(ctx context.Context, token, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id) VALUES (?, ?)`, token, userID)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

func (s *Store) UserByToken(ctx context.Context, token string) (*store.User, error) {
	u := &store.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.password_hash
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ?`, token).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	return u, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

func (s *Store) ListMaps(ctx context.Context, userID string) ([]store.MapRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, id, title, content, updated_at FROM maps
		 WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	defer rows.Close()

	var out []store.MapRecord
	for rows.Next() {
		var rec store.MapRecord
		var updatedAt time.Time
		if err := rows.Scan(&rec.UserID, &rec.ID, &rec.Title, &rec.Content, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning map: %w", err)
		}
		rec.UpdatedAt = updatedAt
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (s *Store) GetMap(ctx context.Context, userID, id string) (*store.MapRecord, error) {
	rec := &store.MapRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, id, title, content, updated_at FROM maps
		 WHERE user_id = ? AND id = ?`, userID, id).
		Scan(&rec.UserID, &rec.ID, &rec.Title, &rec.Content, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying map: %w", err)
	}

	return rec, nil
}

func (s *Store) PutMap(ctx context.Context, rec store.MapRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maps (user_id, id, title, content, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.ID, rec.Title, rec.Content, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storing map: %w", err)
	}

	return nil
}

func (s *Store) DeleteMap(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM maps WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting map: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *Store) PutImage(ctx context.Context, rec store.ImageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (user_id, path, content_type, data)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, path) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data`,
		rec.UserID, rec.Path, rec.ContentType, rec.Data)
	if err != nil {
		return fmt.Errorf("storing image: %w", err)
	}

	return nil
}

func (s *Store) GetImage(ctx context.Context, userID, path string) (*store.ImageRecord, error) {
	rec := &store.ImageRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, path, content_type, data FROM images
		 WHERE user_id = ? AND path = ?`, userID, path).
		Scan(&rec.UserID, &rec.Path, &rec.ContentType, &rec.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying image: %w", err)
	}

	return rec, nil
}

func (s *Store) DeleteImage(ctx context.Context, userID, path string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM images WHERE user_id = ? AND path = ?`, userID, path)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *Store) ListImages(ctx context.Context, userID, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM images WHERE user_id = ? AND path LIKE ? ORDER BY path`,
		userID, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning image path: %w", err)
		}
		out = append(out, path)
	}

	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
