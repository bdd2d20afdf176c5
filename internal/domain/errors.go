// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus is returned when a task status value is not one of
	// the defined states.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrIllegalTransition is returned when a status update attempts the
	// forbidden direct move from "Not Started" to "Completed".
	ErrIllegalTransition = errors.New(
		"cannot change status directly from 'Not Started' to 'Completed'; move to 'In Progress' first",
	)

	// ErrInvalidRole is returned when an employee role is not a known role kind.
	ErrInvalidRole = errors.New("invalid employee role")

	// ErrNegativeHours is returned when a daily hours entry carries a
	// negative hours value.
	ErrNegativeHours = errors.New("hours spent cannot be negative")
)

// ValidationError carries field-level context for a validation failure.
// It wraps ErrValidation (or a more specific sentinel) so callers can
// classify it with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
