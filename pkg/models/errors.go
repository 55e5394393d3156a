package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel all validation failures wrap.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a malformed definition. It is raised
// synchronously at registration/creation time and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}

	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a field-scoped validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks whether err is a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
