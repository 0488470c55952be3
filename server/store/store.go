// Package store defines the persistence interface for the mindfold sync
// server, with in-memory, SQLite, and PostgreSQL implementations in
// subpackages.
package store

import (
	"context"
	"time"
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
}

// MapRecord is one stored map document.
type MapRecord struct {
	UserID    string
	ID        string
	Title     string
	Content   string
	UpdatedAt time.Time
}

// ImageRecord is one stored image blob.
type ImageRecord struct {
	UserID      string
	Path        string
	ContentType string
	Data        []byte
}

// Store is the persistence interface the sync server runs against.
type Store interface {
	// CreateUser registers an account. Returns ErrExists when the email
	// is already registered.
	CreateUser(ctx context.Context, email string, passwordHash []byte) (*User, error)

	// UserByEmail returns the account for an email. ErrNotFound when absent.
	UserByEmail(ctx context.Context, email string) (*User, error)

	// CreateSession binds a bearer token to a user.
	CreateSession(ctx context.Context, token, userID string) error

	// UserByToken resolves a bearer token. ErrNotFound for unknown tokens.
	UserByToken(ctx context.Context, token string) (*User, error)

	// DeleteSession revokes a token. Revoking an unknown token is a no-op.
	DeleteSession(ctx context.Context, token string) error

	// ListMaps returns a user's map records, content included.
	ListMaps(ctx context.Context, userID string) ([]MapRecord, error)

	// GetMap returns one map. ErrNotFound when absent.
	GetMap(ctx context.Context, userID, id string) (*MapRecord, error)

	// PutMap inserts or replaces a map.
	PutMap(ctx context.Context, rec MapRecord) error

	// DeleteMap removes a map. ErrNotFound when absent.
	DeleteMap(ctx context.Context, userID, id string) error

	// PutImage inserts or replaces an image.
	PutImage(ctx context.Context, rec ImageRecord) error

	// GetImage returns one image. ErrNotFound when absent.
	GetImage(ctx context.Context, userID, path string) (*ImageRecord, error)

	// DeleteImage removes an image. ErrNotFound when absent.
	DeleteImage(ctx context.Context, userID, path string) error

	// ListImages returns a user's image paths, optionally filtered by
	// prefix, sorted.
	ListImages(ctx context.Context, userID, prefix string) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}
