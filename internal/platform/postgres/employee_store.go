package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/store"
)

// PostgresEmployeeStore implements the store.EmployeeStore interface.
// Employee rows are owned by the organizational system; this store only reads
// the projection the reminder pass needs.
type PostgresEmployeeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEmployeeStore creates a new PostgreSQL implementation of the EmployeeStore interface.
func NewPostgresEmployeeStore(db store.DBTX, logger *slog.Logger) *PostgresEmployeeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEmployeeStore{
		db:     db,
		logger: logger.With(slog.String("component", "employee_store")),
	}
}

// Ensure PostgresEmployeeStore implements store.EmployeeStore interface
var _ store.EmployeeStore = (*PostgresEmployeeStore)(nil)

// GetByRole implements store.EmployeeStore.GetByRole
func (s *PostgresEmployeeStore) GetByRole(ctx context.Context, role domain.Role) ([]*domain.EmployeeRef, error) {
	query := `
		SELECT id, username, email, role
		FROM employees
		WHERE role = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, role)
	if err != nil {
		s.logger.Error("failed to list employees by role",
			slog.String("role", string(role)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list employees with role %q: %w", role, MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var employees []*domain.EmployeeRef
	for rows.Next() {
		var e domain.EmployeeRef
		if err := rows.Scan(&e.ID, &e.Username, &e.Email, &e.Role); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee rows: %w", err)
	}

	return employees, nil
}
