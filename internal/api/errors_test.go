package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"employee not found", store.ErrEmployeeNotFound, http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"illegal transition", domain.ErrIllegalTransition, http.StatusBadRequest},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"negative hours", domain.ErrNegativeHours, http.StatusBadRequest},
		{
			"validation error wrapping sentinel",
			domain.NewValidationError("status", "bad", domain.ErrInvalidStatus),
			http.StatusBadRequest,
		},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
		{"nil-ish unknown", fmt.Errorf("wrap: %w", errors.New("x")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksInternals(t *testing.T) {
	t.Parallel()

	internal := errors.New("pq: connection refused host=10.0.0.5 password=hunter2")
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "password")

	assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t,
		"Cannot change status directly from 'Not Started' to 'Completed'; move to 'In Progress' first",
		GetSafeErrorMessage(domain.ErrIllegalTransition))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
