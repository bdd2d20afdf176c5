// Package api provides the HTTP handlers for the task tracking API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/worktrack/worktrack-api/internal/api/shared"
	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/platform/logger"
	"github.com/worktrack/worktrack-api/internal/service"
	"github.com/worktrack/worktrack-api/internal/store"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService, log *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      log.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := domain.NewTask(
		req.EmployeeID, req.Topic, req.SubTopic, req.Description,
		date, startDate, endDate,
		req.ExpectedHours, req.CompletedHours, req.Priority,
		domain.Status(req.Status),
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// A manager-assigned task records who assigned it and when.
	if req.AssignedBy != nil {
		assignedAt := time.Now().UTC()
		task.AssignedBy = req.AssignedBy
		task.AssignedDate = &assignedAt
		task.AssignedManager = req.AssignedManager
	}

	if err := h.taskService.CreateTask(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to create task", err)
		return
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id} requests. It applies the lifecycle
// rules: direct completion from "Not Started" is rejected, completing stamps
// the end date, and a backdated working date is silently dropped.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, domain.TaskUpdate{
		EmployeeID:     req.EmployeeID,
		Topic:          req.Topic,
		SubTopic:       req.SubTopic,
		Description:    req.Description,
		Date:           date,
		StartDate:      startDate,
		EndDate:        endDate,
		ExpectedHours:  req.ExpectedHours,
		CompletedHours: req.CompletedHours,
		Priority:       req.Priority,
		Status:         domain.Status(req.Status),
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.respondWithList(w, r, store.TaskFilter{})
}

// SearchTasks handles GET /tasks/search?date=&status= requests. Both
// parameters are optional and combine with AND.
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		filter.Date = &date
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
			return
		}
		filter.Status = &status
	}

	h.respondWithList(w, r, filter)
}

// ListByStatus handles GET /tasks/status/{status} requests.
func (h *TaskHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(chi.URLParam(r, "status"))
	if !status.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
		return
	}

	h.respondWithList(w, r, store.TaskFilter{Status: &status})
}

// ListOverdue handles GET /tasks/status/overdue requests: tasks already
// labelled Overdue plus incomplete tasks whose end date has passed, even if
// the classifier has not run yet. Optionally scoped to one employee.
func (h *TaskHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.optionalEmployeeFilter(w, r)
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	filter.OverdueAsOf = &asOf
	h.respondWithList(w, r, filter)
}

// ListActive handles GET /tasks/status/active requests: incomplete tasks
// whose planned window contains today. Optionally scoped to one employee.
func (h *TaskHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.optionalEmployeeFilter(w, r)
	if !ok {
		return
	}

	today := time.Now().UTC()
	filter.ActiveOn = &today
	h.respondWithList(w, r, filter)
}

// EmployeeTasks handles GET /employees/{employeeID}/tasks requests.
func (h *TaskHandler) EmployeeTasks(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeIDFromPath(w, r)
	if !ok {
		return
	}

	h.respondWithList(w, r, store.TaskFilter{EmployeeID: &employeeID})
}

// EmployeePrivateTasks handles GET /employees/{employeeID}/tasks/private
// requests: self-created tasks only.
func (h *TaskHandler) EmployeePrivateTasks(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeIDFromPath(w, r)
	if !ok {
		return
	}

	assigned := false
	h.respondWithList(w, r, store.TaskFilter{EmployeeID: &employeeID, Assigned: &assigned})
}

// EmployeeAssignedTasks handles GET /employees/{employeeID}/tasks/assigned
// requests: manager-assigned tasks only.
func (h *TaskHandler) EmployeeAssignedTasks(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeIDFromPath(w, r)
	if !ok {
		return
	}

	assigned := true
	h.respondWithList(w, r, store.TaskFilter{EmployeeID: &employeeID, Assigned: &assigned})
}

// EmployeeIncompleteTasks handles GET /employees/{employeeID}/tasks/incomplete
// requests: Not Started or In Progress tasks whose planned window contains
// today. Pending and completed tasks are excluded from this view.
func (h *TaskHandler) EmployeeIncompleteTasks(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeIDFromPath(w, r)
	if !ok {
		return
	}

	today := time.Now().UTC()
	h.respondWithList(w, r, store.TaskFilter{EmployeeID: &employeeID, ActiveOn: &today})
}

// LogHours handles POST /tasks/{id}/hours requests: upserts today's hours
// entry for the task. Logging twice the same day overwrites the first value.
func (h *TaskHandler) LogHours(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	var req LogHoursRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Hours spent cannot be negative", err)
		return
	}

	if err := h.taskService.LogDailyHours(r.Context(), id, req.HoursSpent); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DailyHours handles GET /tasks/{id}/daily-hours requests.
func (h *TaskHandler) DailyHours(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	entries, err := h.taskService.DailyHours(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entriesToResponse(entries))
}

func (h *TaskHandler) respondWithList(w http.ResponseWriter, r *http.Request, filter store.TaskFilter) {
	tasks, err := h.taskService.ListTasks(r.Context(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

func (h *TaskHandler) optionalEmployeeFilter(w http.ResponseWriter, r *http.Request) (store.TaskFilter, bool) {
	var filter store.TaskFilter

	if raw := r.URL.Query().Get("employee_id"); raw != "" {
		employeeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || employeeID <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid employee ID")
			return filter, false
		}
		filter.EmployeeID = &employeeID
	}

	return filter, true
}

func (h *TaskHandler) taskIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) employeeIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil || employeeID <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid employee ID")
		return 0, false
	}
	return employeeID, true
}
