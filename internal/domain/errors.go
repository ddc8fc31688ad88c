package domain

import "errors"

var (
	// ErrNotFound indicates the requested record or subscription does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a write lost an optimistic-concurrency race.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates invalid input. Wrap with %w for details.
	ErrValidation = errors.New("validation error")
)
