package store

import "errors"

// ErrNotFound is returned when a record doesn't exist in the store.
var ErrNotFound = errors.New("record not found")

// ErrExists is returned when a unique constraint would be violated.
var ErrExists = errors.New("record already exists")
