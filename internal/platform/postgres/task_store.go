package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/store"
)

// taskColumns is the canonical select list shared by every task query.
const taskColumns = `id, employee_id, topic, sub_topic, description, date, start_date, end_date,
	expected_hours, completed_hours, priority, status, assigned_by, assigned_date,
	assigned_manager, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (employee_id, topic, sub_topic, description, date, start_date, end_date,
			expected_hours, completed_hours, priority, status, assigned_by, assigned_date,
			assigned_manager, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		task.EmployeeID,
		task.Topic,
		task.SubTopic,
		task.Description,
		task.Date,
		task.StartDate,
		task.EndDate,
		task.ExpectedHours,
		task.CompletedHours,
		task.Priority,
		task.Status,
		task.AssignedBy,
		task.AssignedDate,
		task.AssignedManager,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error("failed to create task",
			slog.Int64("employee_id", task.EmployeeID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task: %w", MapError(err))
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task %d: %w", id, MapError(err))
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// It persists every mutable field of the task.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET employee_id = $1, topic = $2, sub_topic = $3, description = $4, date = $5,
			start_date = $6, end_date = $7, expected_hours = $8, completed_hours = $9,
			priority = $10, status = $11, assigned_by = $12, assigned_date = $13,
			assigned_manager = $14, updated_at = $15
		WHERE id = $16
	`

	result, err := s.db.ExecContext(ctx, query,
		task.EmployeeID,
		task.Topic,
		task.SubTopic,
		task.Description,
		task.Date,
		task.StartDate,
		task.EndDate,
		task.ExpectedHours,
		task.CompletedHours,
		task.Priority,
		task.Status,
		task.AssignedBy,
		task.AssignedDate,
		task.AssignedManager,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error("failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task %d: %w", task.ID, MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		if IsNotFoundError(err) {
			return store.ErrTaskNotFound
		}
		return err
	}

	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		if IsNotFoundError(err) {
			return store.ErrTaskNotFound
		}
		return err
	}

	return nil
}

// List implements store.TaskStore.List
// It assembles the WHERE clause from the filter's non-nil fields; results are
// ordered by priority ascending, then ID for a stable order.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != nil {
		conds = append(conds, "employee_id = "+arg(*filter.EmployeeID))
	}
	if filter.Status != nil {
		conds = append(conds, "status = "+arg(*filter.Status))
	}
	if filter.Date != nil {
		conds = append(conds, "date = "+arg(domain.DateOnly(*filter.Date)))
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			conds = append(conds, "assigned_by IS NOT NULL")
		} else {
			conds = append(conds, "assigned_by IS NULL")
		}
	}
	if filter.ActiveOn != nil {
		d := arg(domain.DateOnly(*filter.ActiveOn))
		conds = append(conds,
			fmt.Sprintf("status IN ('%s', '%s')", domain.StatusNotStarted, domain.StatusInProgress),
			"start_date <= "+d,
			fmt.Sprintf("(end_date IS NULL OR end_date >= %s)", d),
		)
	}
	if filter.OverdueAsOf != nil {
		d := arg(domain.DateOnly(*filter.OverdueAsOf))
		conds = append(conds, fmt.Sprintf(
			"(status = '%s' OR (end_date IS NOT NULL AND end_date < %s AND status <> '%s'))",
			domain.StatusOverdue, d, domain.StatusCompleted,
		))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY priority ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// AdvanceLagging implements store.TaskStore.AdvanceLagging
// A single UPDATE keeps the whole batch atomic: every matching row advances
// by exactly one day or none does.
func (s *PostgresTaskStore) AdvanceLagging(ctx context.Context, today time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE tasks
		SET date = date + INTERVAL '1 day', updated_at = NOW()
		WHERE status IN ('%s', '%s', '%s') AND date <= $1
	`, domain.StatusNotStarted, domain.StatusInProgress, domain.StatusPending)

	result, err := s.db.ExecContext(ctx, query, domain.DateOnly(today))
	if err != nil {
		s.logger.Error("failed to advance lagging tasks", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to advance lagging tasks: %w", MapError(err))
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}

// MarkOverdue implements store.TaskStore.MarkOverdue
// Idempotent: relabelled rows leave the selection predicate, so a second run
// with no intervening changes matches nothing.
func (s *PostgresTaskStore) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE tasks
		SET status = '%s', updated_at = NOW()
		WHERE status IN ('%s', '%s') AND end_date IS NOT NULL AND end_date < $1
	`, domain.StatusOverdue, domain.StatusNotStarted, domain.StatusInProgress)

	result, err := s.db.ExecContext(ctx, query, domain.DateOnly(today))
	if err != nil {
		s.logger.Error("failed to mark overdue tasks", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to mark overdue tasks: %w", MapError(err))
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var endDate, assignedDate sql.NullTime
	var assignedBy sql.NullInt64
	var assignedManager sql.NullString

	err := row.Scan(
		&t.ID,
		&t.EmployeeID,
		&t.Topic,
		&t.SubTopic,
		&t.Description,
		&t.Date,
		&t.StartDate,
		&endDate,
		&t.ExpectedHours,
		&t.CompletedHours,
		&t.Priority,
		&t.Status,
		&assignedBy,
		&assignedDate,
		&assignedManager,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		t.EndDate = &endDate.Time
	}
	if assignedBy.Valid {
		t.AssignedBy = &assignedBy.Int64
	}
	if assignedDate.Valid {
		t.AssignedDate = &assignedDate.Time
	}
	if assignedManager.Valid {
		t.AssignedManager = &assignedManager.String
	}

	return &t, nil
}
