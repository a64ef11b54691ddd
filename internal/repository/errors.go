package repository

import "errors"

var (
	// ErrNotFound is returned when the addressed parent does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint rejects a write,
	// e.g. an attendee email already in use.
	ErrDuplicate = errors.New("duplicate value")

	// ErrInvalidID is returned when an id cannot be parsed by the backend.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidReference is returned when a write points at a row that does
	// not exist, e.g. an attendance for an unknown ticket type.
	ErrInvalidReference = errors.New("invalid reference")
)
