package api

import (
	"errors"
	"net/http"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrEmployeeNotFound),
		errors.Is(err, store.ErrHoursEntryNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNegativeHours),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrEmployeeNotFound):
		return "Employee not found"

	case errors.Is(err, store.ErrHoursEntryNotFound):
		return "Hours entry not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrIllegalTransition):
		return "Cannot change status directly from 'Not Started' to 'Completed'; move to 'In Progress' first"

	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid task status"

	case errors.Is(err, domain.ErrNegativeHours):
		return "Hours spent cannot be negative"

	case errors.Is(err, domain.ErrInvalidRole):
		return "Invalid employee role"

	case errors.Is(err, domain.ErrValidation):
		// Domain validation messages are built in-process and safe to show.
		var valErr *domain.ValidationError
		if errors.As(err, &valErr) {
			return valErr.Error()
		}
		return "Invalid request data"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
