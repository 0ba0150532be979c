package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a claim, actor or document does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor's role does not permit the operation
	ErrForbidden = errors.New("access denied")

	// ErrInvalidState is returned when a claim is not in a state the operation accepts
	ErrInvalidState = errors.New("invalid claim state")

	// ErrConcurrentUpdate is returned when a claim changed since it was loaded
	ErrConcurrentUpdate = errors.New("claim was modified concurrently")
)

// ValidationError reports an invalid input field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
