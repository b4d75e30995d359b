package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a compare-and-swap update finds the
	// persisted state no longer matches the expected state.
	ErrConflict = errors.New("state changed concurrently")
)
