package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/platform/logger"
	"github.com/worktrack/worktrack-api/internal/store"
)

// TaskService owns the task lifecycle engine, the rollover and overdue batch
// operations, and the daily-hours ledger. Each foreground call opens its own
// transactional scope; the batches are single atomic statements in the store.
type TaskService struct {
	runTx  store.TxRunner
	tasks  store.TaskStore
	hours  store.HoursStore
	logger *slog.Logger

	// now is the clock; swapped in tests.
	now func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	runTx store.TxRunner,
	tasks store.TaskStore,
	hours store.HoursStore,
	log *slog.Logger,
) (*TaskService, error) {
	if runTx == nil {
		return nil, domain.NewValidationError("runTx", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if hours == nil {
		return nil, domain.NewValidationError("hours", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &TaskService{
		runTx:  runTx,
		tasks:  tasks,
		hours:  hours,
		logger: log.With(slog.String("component", "task_service")),
		now:    time.Now,
	}, nil
}

// CreateTask persists a new task. The caller builds the task through
// domain.NewTask, which defaults an omitted status to "Not Started".
func (s *TaskService) CreateTask(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Create(ctx, task); err != nil {
		return NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("created task",
		slog.Int64("task_id", task.ID),
		slog.Int64("employee_id", task.EmployeeID),
		slog.String("status", string(task.Status)))
	return nil
}

// UpdateTask applies a lifecycle update to the task with the given ID.
// The read-validate-write sequence runs inside one transaction so concurrent
// updates to the same row serialize through the store rather than losing
// writes. A validation failure (illegal transition, unknown status) rejects
// the whole update with nothing mutated.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}

		previousStatus := task.Status
		if err := task.Apply(update, s.now().UTC()); err != nil {
			return err
		}

		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("update_task", "failed to persist update", err)
		}

		if previousStatus != task.Status {
			log.Info("changed task status",
				slog.Int64("task_id", task.ID),
				slog.String("old_status", string(previousStatus)),
				slog.String("new_status", string(task.Status)))
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetTask retrieves a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// GetTaskForEmployee retrieves a task only when it belongs to the given
// employee; a task owned by someone else reads as not found.
func (s *TaskService) GetTaskForEmployee(ctx context.Context, taskID, employeeID int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.EmployeeID != employeeID {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// DeleteTask removes a task and, via the schema's cascade, its hours entries.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("deleted task", slog.Int64("task_id", id))
	return nil
}

// ListTasks returns the tasks matching the filter, ordered by priority.
func (s *TaskService) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

// Rollover advances the working date of every unfinished task whose date is
// on or before today by exactly one day. This is a deliberate single-day
// nudge, not a jump to today: repeated daily runs converge a lagging task
// toward the present one day at a time. Returns the number of tasks advanced;
// zero is a normal outcome, and a same-day re-run matches fewer (eventually
// zero) rows since advanced dates move past today.
func (s *TaskService) Rollover(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	count, err := s.tasks.AdvanceLagging(ctx, s.now().UTC())
	if err != nil {
		return 0, NewTaskServiceError("rollover", "failed to advance lagging tasks", err)
	}

	log.Info("rollover pass complete", slog.Int64("tasks_advanced", count))
	return count, nil
}

// MarkOverdue relabels incomplete tasks whose planned end date has passed as
// Overdue. It touches no other field. Idempotent: relabelled tasks no longer
// match the selection, so a second run yields zero additional transitions.
func (s *TaskService) MarkOverdue(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	count, err := s.tasks.MarkOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, NewTaskServiceError("mark_overdue", "failed to mark overdue tasks", err)
	}

	log.Info("overdue pass complete", slog.Int64("tasks_marked", count))
	return count, nil
}

// LogDailyHours records the hours spent on a task today. Logging twice for
// the same day overwrites the earlier value (last write wins). The hours are
// not validated against the task's expected hours.
func (s *TaskService) LogDailyHours(ctx context.Context, taskID int64, hoursSpent int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The task must exist; the ledger never creates orphan entries.
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}

	entry, err := domain.NewDailyHoursEntry(taskID, s.now().UTC(), hoursSpent)
	if err != nil {
		return err
	}

	if err := s.hours.Upsert(ctx, entry); err != nil {
		return NewTaskServiceError("log_daily_hours", "failed to upsert hours entry", err)
	}

	log.Debug("logged daily hours",
		slog.Int64("task_id", taskID),
		slog.Int("hours_spent", hoursSpent))
	return nil
}

// DailyHours returns every hours entry for the task, ordered by date ascending.
func (s *TaskService) DailyHours(ctx context.Context, taskID int64) ([]*domain.DailyHoursEntry, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	return s.hours.ListByTask(ctx, taskID)
}
