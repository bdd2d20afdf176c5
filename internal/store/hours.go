package store

import (
	"context"
	"database/sql"

	"github.com/worktrack/worktrack-api/internal/domain"
)

// HoursStore defines the interface for daily task hours persistence.
type HoursStore interface {
	// Upsert records the hours spent on a task for the entry's day.
	// If an entry already exists for (task, day), its hours are overwritten;
	// the last write for a given day wins. The statement is atomic.
	Upsert(ctx context.Context, entry *domain.DailyHoursEntry) error

	// ListByTask returns every entry for the task ordered by date ascending.
	ListByTask(ctx context.Context, taskID int64) ([]*domain.DailyHoursEntry, error)

	// WithTx returns a HoursStore bound to the provided transaction.
	WithTx(tx *sql.Tx) HoursStore
}
