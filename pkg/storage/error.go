package storage

import "errors"

// ErrNotAuthenticated is returned by cloud write paths invoked without a
// valid session. No network call is made.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrNotFound is returned when a map or image doesn't exist in the store.
type ErrNotFound struct {
	Path string
}

func (e ErrNotFound) Error() string {
	if e.Path == "" {
		return "not found"
	}

	return "not found: " + e.Path
}

// ErrNotSupported is returned when a backend does not implement an
// optional operation. Callers treat it the same as a failed extension
// interface assertion.
type ErrNotSupported struct {
	Backend string
	Op      string
}

func (e ErrNotSupported) Error() string {
	return e.Backend + " storage does not support " + e.Op
}

// ErrInvalidMapID is returned when a map identifier fails a precondition,
// e.g. an empty or sentinel mapId passed to a cloud save or delete.
type ErrInvalidMapID struct {
	MapID  string
	Reason string
}

func (e ErrInvalidMapID) Error() string {
	return "invalid map id " + `"` + e.MapID + `": ` + e.Reason
}
