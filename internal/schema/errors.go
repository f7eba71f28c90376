package schema

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first field of a draft that failed validation.
// Callers fix that field and validate again; errors are not collected in batches.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Reason, e.Value)
}

// Is implements error matching for errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}
