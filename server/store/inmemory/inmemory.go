// Package inmemory provides a map-backed Store for tests and ephemeral
// servers.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mindfoldco/mindfold/server/store"
)

// Store implements store.Store in process memory.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*store.User // by id
	byEmail  map[string]string      // email -> id
	sessions map[string]string      // token -> user id
	maps     map[string]store.MapRecord
	images   map[string]store.ImageRecord
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[string]*store.User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]string),
		maps:     make(map[string]store.MapRecord),
		images:   make(map[string]store.ImageRecord),
	}
}

func (s *Store) CreateUser(ctx context.Context, email string, passwordHash []byte) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return nil, store.ErrExists
	}

	u := &store.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID

	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}

	return s.users[id], nil
}

func (s *Store) CreateSession(ctx context.Context, token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = userID
	return nil
}

func (s *Store) UserByToken(ctx context.Context, token string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	if !ok {
		return nil, store.ErrNotFound
	}

	u, ok := s.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}

	return u, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) ListMaps(ctx context.Context, userID string) ([]store.MapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.MapRecord
	for _, rec := range s.maps {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetMap(ctx context.Context, userID, id string) (*store.MapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.maps[userID+"\x00"+id]
	if !ok {
		return nil, store.ErrNotFound
	}

	return &rec, nil
}

func (s *Store) PutMap(ctx context.Context, rec store.MapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maps[rec.UserID+"\x00"+rec.ID] = rec
	return nil
}

func (s *Store) DeleteMap(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "\x00" + id
	if _, ok := s.maps[key]; !ok {
		return store.ErrNotFound
	}

	delete(s.maps, key)
	return nil
}

func (s *Store) PutImage(ctx context.Context, rec store.ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images[rec.UserID+"\x00"+rec.Path] = rec
	return nil
}

func (s *Store) GetImage(ctx context.Context, userID, path string) (*store.ImageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.images[userID+"\x00"+path]
	if !ok {
		return nil, store.ErrNotFound
	}

	return &rec, nil
}

func (s *Store) DeleteImage(ctx context.Context, userID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "\x00" + path
	if _, ok := s.images[key]; !ok {
		return store.ErrNotFound
	}

	delete(s.images, key)
	return nil
}

func (s *Store) ListImages(ctx context.Context, userID, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, rec := range s.images {
		if rec.UserID != userID {
			continue
		}
		if prefix != "" && !strings.HasPrefix(rec.Path, prefix) {
			continue
		}
		out = append(out, rec.Path)
	}

	sort.Strings(out)
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
