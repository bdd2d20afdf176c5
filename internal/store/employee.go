package store

import (
	"context"

	"github.com/worktrack/worktrack-api/internal/domain"
)

// EmployeeStore is the read-only employee surface this service consumes.
// Organizational CRUD is owned by a collaborating system.
type EmployeeStore interface {
	// GetByRole returns every employee holding the given role kind.
	GetByRole(ctx context.Context, role domain.Role) ([]*domain.EmployeeRef, error)
}
