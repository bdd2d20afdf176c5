package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/store"
)

// PostgresHoursStore implements the store.HoursStore interface
// using a PostgreSQL database as the storage backend.
type PostgresHoursStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHoursStore creates a new PostgreSQL implementation of the HoursStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresHoursStore(db store.DBTX, logger *slog.Logger) *PostgresHoursStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHoursStore{
		db:     db,
		logger: logger.With(slog.String("component", "hours_store")),
	}
}

// Ensure PostgresHoursStore implements store.HoursStore interface
var _ store.HoursStore = (*PostgresHoursStore)(nil)

// WithTx implements store.HoursStore.WithTx
func (s *PostgresHoursStore) WithTx(tx *sql.Tx) store.HoursStore {
	return &PostgresHoursStore{
		db:     tx,
		logger: s.logger,
	}
}

// Upsert implements store.HoursStore.Upsert
// The (task_id, date) unique constraint plus ON CONFLICT gives last-write-wins
// semantics in one atomic statement.
func (s *PostgresHoursStore) Upsert(ctx context.Context, entry *domain.DailyHoursEntry) error {
	query := `
		INSERT INTO daily_task_hours (task_id, date, hours_spent)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, date)
		DO UPDATE SET hours_spent = EXCLUDED.hours_spent, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, entry.TaskID, entry.Date, entry.HoursSpent)
	if err != nil {
		s.logger.Error("failed to upsert daily hours",
			slog.Int64("task_id", entry.TaskID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to upsert daily hours for task %d: %w", entry.TaskID, MapError(err))
	}

	return nil
}

// ListByTask implements store.HoursStore.ListByTask
func (s *PostgresHoursStore) ListByTask(ctx context.Context, taskID int64) ([]*domain.DailyHoursEntry, error) {
	query := `
		SELECT task_id, date, hours_spent
		FROM daily_task_hours
		WHERE task_id = $1
		ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		s.logger.Error("failed to list daily hours",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list daily hours for task %d: %w", taskID, MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.DailyHoursEntry
	for rows.Next() {
		var e domain.DailyHoursEntry
		if err := rows.Scan(&e.TaskID, &e.Date, &e.HoursSpent); err != nil {
			return nil, fmt.Errorf("failed to scan daily hours row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily hours rows: %w", err)
	}

	return entries, nil
}
