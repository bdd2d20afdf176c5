package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/worktrack/worktrack-api/internal/config"
	"github.com/worktrack/worktrack-api/internal/platform/postgres"
	"github.com/worktrack/worktrack-api/internal/platform/smtp"
	"github.com/worktrack/worktrack-api/internal/scheduler"
	"github.com/worktrack/worktrack-api/internal/service"
	"github.com/worktrack/worktrack-api/internal/store"
)

// application holds the wired dependencies for one server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskService     *service.TaskService
	reminderService *service.ReminderService
	scheduler       *scheduler.DailyScheduler
}

// newApplication connects to the database, runs migrations, and wires the
// stores, services and background scheduler together.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db, logger)
	hoursStore := postgres.NewPostgresHoursStore(db, logger)
	employeeStore := postgres.NewPostgresEmployeeStore(db, logger)

	taskService, err := service.NewTaskService(store.NewTxRunner(db), taskStore, hoursStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	mailer := smtp.NewMailer(cfg.SMTP, logger)
	reminderService, err := service.NewReminderService(employeeStore, taskStore, mailer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder service: %w", err)
	}

	sched, err := setupScheduler(cfg.Scheduler, taskService, reminderService, logger)
	if err != nil {
		return nil, err
	}

	return &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		taskService:     taskService,
		reminderService: reminderService,
		scheduler:       sched,
	}, nil
}

// setupScheduler builds the three daily loops from their configured fire times.
func setupScheduler(
	cfg config.SchedulerConfig,
	tasks *service.TaskService,
	reminders *service.ReminderService,
	logger *slog.Logger,
) (*scheduler.DailyScheduler, error) {
	rolloverAt, err := scheduler.ParseTimeOfDay(cfg.RolloverTime)
	if err != nil {
		return nil, fmt.Errorf("invalid rollover_time: %w", err)
	}
	overdueAt, err := scheduler.ParseTimeOfDay(cfg.OverdueTime)
	if err != nil {
		return nil, fmt.Errorf("invalid overdue_time: %w", err)
	}
	reminderAt, err := scheduler.ParseTimeOfDay(cfg.ReminderTime)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder_time: %w", err)
	}

	jobs := []scheduler.Job{
		{Name: "rollover", At: rolloverAt, Run: tasks.Rollover},
		{Name: "overdue", At: overdueAt, Run: tasks.MarkOverdue},
		{Name: "reminders", At: reminderAt, Run: func(ctx context.Context) (int64, error) {
			sent, err := reminders.SendReminders(ctx)
			return int64(sent), err
		}},
	}

	return scheduler.NewDailyScheduler(jobs, logger), nil
}

// run starts the background loops and serves HTTP until shutdown.
func (app *application) run() error {
	app.scheduler.Start()

	return app.startHTTPServer(context.Background(), app.setupRouter())
}

// cleanup releases resources during shutdown.
func (app *application) cleanup() {
	app.scheduler.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
