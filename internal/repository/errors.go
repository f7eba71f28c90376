package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("record not found")

// NotFoundError is returned when an operation names an id that is not stored.
type NotFoundError struct {
	// Kind is the record kind, "invoice" or "customer".
	Kind string
	ID   int64
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Is implements error matching for errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
