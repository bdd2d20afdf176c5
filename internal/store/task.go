package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/worktrack/worktrack-api/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields are not applied.
// Results are always ordered by priority ascending (lower = more urgent).
type TaskFilter struct {
	// EmployeeID restricts results to one employee's tasks.
	EmployeeID *int64

	// Status restricts results to a single status.
	Status *domain.Status

	// Date restricts results to tasks whose working date equals the given day.
	Date *time.Time

	// Assigned selects the assigned (true) or private (false) partition,
	// derived from assigned_by being set.
	Assigned *bool

	// ActiveOn selects incomplete tasks (Not Started / In Progress) whose
	// planned window contains the given day.
	ActiveOn *time.Time

	// OverdueAsOf selects tasks labelled Overdue plus incomplete tasks whose
	// end date has passed relative to the given day.
	OverdueAsOf *time.Time
}

// TaskStore defines the interface for task persistence.
//
// The batch operations (AdvanceLagging, MarkOverdue) commit all-or-nothing;
// a concurrent foreground edit to the same task happens fully before or
// fully after the batch, never interleaved.
type TaskStore interface {
	// Create saves a new task and assigns its ID.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update persists every mutable field of the task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Its daily hours entries are removed by the
	// schema's ON DELETE CASCADE constraint.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns the tasks matching the filter, ordered by priority.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// AdvanceLagging moves the working date of every non-terminal task whose
	// date is on or before today forward by exactly one day, in a single
	// atomic statement. Returns the number of tasks advanced.
	AdvanceLagging(ctx context.Context, today time.Time) (int64, error)

	// MarkOverdue relabels incomplete tasks whose end date has passed as
	// Overdue, in a single atomic statement. Returns the number relabelled.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)

	// WithTx returns a TaskStore bound to the provided transaction so
	// read-then-write sequences apply atomically.
	WithTx(tx *sql.Tx) TaskStore
}
