package api

import (
	"log/slog"
	"net/http"

	"github.com/worktrack/worktrack-api/internal/api/shared"
	"github.com/worktrack/worktrack-api/internal/platform/logger"
	"github.com/worktrack/worktrack-api/internal/service"
)

// JobsHandler exposes manual triggers for the daily maintenance passes. Each
// trigger runs the same code path as the scheduled occurrence and reports the
// affected row count; a batch either applies fully or not at all.
type JobsHandler struct {
	taskService     *service.TaskService
	reminderService *service.ReminderService
	logger          *slog.Logger
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(
	taskService *service.TaskService,
	reminderService *service.ReminderService,
	log *slog.Logger,
) *JobsHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for JobsHandler")
	}
	if reminderService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reminderService cannot be nil for JobsHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &JobsHandler{
		taskService:     taskService,
		reminderService: reminderService,
		logger:          log.With(slog.String("component", "jobs_handler")),
	}
}

// TriggerRollover handles POST /jobs/rollover requests.
func (h *JobsHandler) TriggerRollover(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	count, err := h.taskService.Rollover(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Rollover pass failed", err)
		return
	}

	log.Info("manual rollover pass", slog.Int64("tasks_advanced", count))
	shared.RespondWithJSON(w, r, http.StatusOK, BatchResponse{Count: count})
}

// TriggerOverdue handles POST /jobs/overdue requests.
func (h *JobsHandler) TriggerOverdue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	count, err := h.taskService.MarkOverdue(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Overdue pass failed", err)
		return
	}

	log.Info("manual overdue pass", slog.Int64("tasks_marked", count))
	shared.RespondWithJSON(w, r, http.StatusOK, BatchResponse{Count: count})
}

// TriggerReminders handles POST /jobs/reminders requests.
func (h *JobsHandler) TriggerReminders(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sent, err := h.reminderService.SendReminders(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Reminder pass failed", err)
		return
	}

	log.Info("manual reminder pass", slog.Int("digests_sent", sent))
	shared.RespondWithJSON(w, r, http.StatusOK, ReminderPassResponse{Sent: sent})
}
