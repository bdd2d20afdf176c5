package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/service"
	"github.com/worktrack/worktrack-api/internal/store"
)

// stubTaskStore is a map-backed store.TaskStore for handler tests.
type stubTaskStore struct {
	nextID int64
	tasks  map[int64]*domain.Task
}

func newStubTaskStore() *stubTaskStore {
	return &stubTaskStore{tasks: make(map[int64]*domain.Task)}
}

func (s *stubTaskStore) Create(_ context.Context, task *domain.Task) error {
	s.nextID++
	task.ID = s.nextID
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *stubTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *stubTaskStore) Update(_ context.Context, task *domain.Task) error {
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *stubTaskStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *stubTaskStore) List(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if filter.EmployeeID != nil && task.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Date != nil && !task.Date.Equal(domain.DateOnly(*filter.Date)) {
			continue
		}
		if filter.Assigned != nil && task.Assigned() != *filter.Assigned {
			continue
		}
		if filter.ActiveOn != nil && !activeOn(task, domain.DateOnly(*filter.ActiveOn)) {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// activeOn mirrors the store's planned-window predicate.
func activeOn(task *domain.Task, day time.Time) bool {
	if task.Status != domain.StatusNotStarted && task.Status != domain.StatusInProgress {
		return false
	}
	if task.StartDate.After(day) {
		return false
	}
	return task.EndDate == nil || !task.EndDate.Before(day)
}

func (s *stubTaskStore) AdvanceLagging(context.Context, time.Time) (int64, error) { return 0, nil }
func (s *stubTaskStore) MarkOverdue(context.Context, time.Time) (int64, error)    { return 0, nil }
func (s *stubTaskStore) WithTx(*sql.Tx) store.TaskStore                           { return s }

// stubHoursStore is a minimal store.HoursStore for handler tests.
type stubHoursStore struct {
	entries map[int64]map[time.Time]int
}

func newStubHoursStore() *stubHoursStore {
	return &stubHoursStore{entries: make(map[int64]map[time.Time]int)}
}

func (s *stubHoursStore) Upsert(_ context.Context, entry *domain.DailyHoursEntry) error {
	byDay, ok := s.entries[entry.TaskID]
	if !ok {
		byDay = make(map[time.Time]int)
		s.entries[entry.TaskID] = byDay
	}
	byDay[entry.Date] = entry.HoursSpent
	return nil
}

func (s *stubHoursStore) ListByTask(_ context.Context, taskID int64) ([]*domain.DailyHoursEntry, error) {
	var out []*domain.DailyHoursEntry
	for date, hours := range s.entries[taskID] {
		out = append(out, &domain.DailyHoursEntry{TaskID: taskID, Date: date, HoursSpent: hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *stubHoursStore) WithTx(*sql.Tx) store.HoursStore { return s }

type handlerFixture struct {
	tasks   *stubTaskStore
	hours   *stubHoursStore
	router  chi.Router
	service *service.TaskService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	tasks := newStubTaskStore()
	hours := newStubHoursStore()

	// The stubs' WithTx ignores the nil transaction.
	runTx := func(ctx context.Context, fn store.TxFn) error { return fn(ctx, nil) }

	svc, err := service.NewTaskService(runTx, tasks, hours, nil)
	require.NoError(t, err)

	handler := NewTaskHandler(svc, nil)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", handler.CreateTask)
			r.Get("/", handler.ListTasks)
			r.Get("/search", handler.SearchTasks)
			r.Get("/status/overdue", handler.ListOverdue)
			r.Get("/status/active", handler.ListActive)
			r.Get("/status/{status}", handler.ListByStatus)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.GetTask)
				r.Put("/", handler.UpdateTask)
				r.Delete("/", handler.DeleteTask)
				r.Post("/hours", handler.LogHours)
				r.Get("/daily-hours", handler.DailyHours)
			})
		})
		r.Route("/employees/{employeeID}/tasks", func(r chi.Router) {
			r.Get("/", handler.EmployeeTasks)
			r.Get("/private", handler.EmployeePrivateTasks)
			r.Get("/assigned", handler.EmployeeAssignedTasks)
			r.Get("/incomplete", handler.EmployeeIncompleteTasks)
		})
	})

	return &handlerFixture{tasks: tasks, hours: hours, router: r, service: svc}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) seed(t *testing.T, task *domain.Task) *domain.Task {
	t.Helper()

	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func validCreateBody() map[string]any {
	return map[string]any{
		"employee_id":    int64(1),
		"topic":          "Quarterly report",
		"sub_topic":      "Finance",
		"description":    "Numbers for Q1",
		"date":           "2026-04-02",
		"start_date":     "2026-04-01",
		"expected_hours": 8,
		"priority":       2,
	}
}

func TestCreateTaskDefaultsStatus(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tasks", validCreateBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Not Started", resp.Status)
	assert.Equal(t, "2026-04-02", resp.Date)
	assert.Nil(t, resp.AssignedBy)
}

func TestCreateTaskWithAssignment(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)

	body := validCreateBody()
	body["assigned_by"] = int64(9)
	body["assigned_manager"] = "dthompson"

	rec := f.do(t, http.MethodPost, "/api/tasks", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.AssignedBy)
	assert.Equal(t, int64(9), *resp.AssignedBy)
	assert.NotNil(t, resp.AssignedDate)
	require.NotNil(t, resp.AssignedManager)
	assert.Equal(t, "dthompson", *resp.AssignedManager)
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing employee", func(b map[string]any) { delete(b, "employee_id") }},
		{"missing topic", func(b map[string]any) { delete(b, "topic") }},
		{"bad date", func(b map[string]any) { b["date"] = "02/04/2026" }},
		{"negative hours", func(b map[string]any) { b["expected_hours"] = -1 }},
		{"unknown status", func(b map[string]any) { b["status"] = "Paused" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validCreateBody()
			tc.mutate(body)
			rec := f.do(t, http.MethodPost, "/api/tasks", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func validUpdateBody(status string) map[string]any {
	return map[string]any{
		"employee_id":    int64(1),
		"topic":          "Quarterly report",
		"date":           "2026-04-02",
		"start_date":     "2026-04-01",
		"expected_hours": 8,
		"status":         status,
	}
}

func TestUpdateTaskCompletesInProgressTask(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Quarterly report",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusInProgress,
	})

	rec := f.do(t, http.MethodPut, "/api/tasks/1", validUpdateBody("Completed"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Completed", resp.Status)
	assert.NotNil(t, resp.EndDate, "completion stamps the end date")
}

func TestUpdateTaskRejectsDirectCompletion(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Quarterly report",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusNotStarted,
	})

	rec := f.do(t, http.MethodPut, "/api/tasks/1", validUpdateBody("Completed"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "move to 'In Progress' first")

	// The stored task is unmodified after the rejection.
	rec = f.do(t, http.MethodGet, "/api/tasks/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Not Started", resp.Status)
	assert.Nil(t, resp.EndDate)
}

func TestUpdateTaskBadInput(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Quarterly report",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusNotStarted,
	})

	rec := f.do(t, http.MethodPut, "/api/tasks/1", validUpdateBody("Paused"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := validUpdateBody("In Progress")
	delete(body, "status")
	rec = f.do(t, http.MethodPut, "/api/tasks/1", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/tasks/99", validUpdateBody("In Progress"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Report",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusInProgress,
	})

	rec := f.do(t, http.MethodGet, "/api/tasks/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Report", resp.Topic)
	assert.Equal(t, "In Progress", resp.Status)

	rec = f.do(t, http.MethodGet, "/api/tasks/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tasks/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksOrderedByPriority(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Low", Priority: 5,
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusNotStarted,
	})
	f.seed(t, &domain.Task{
		EmployeeID: 2, Topic: "Urgent", Priority: 1,
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusNotStarted,
	})

	rec := f.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Urgent", resp[0].Topic)
	assert.Equal(t, "Low", resp[1].Topic)
}

func TestSearchTasksByDateAndStatus(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Match",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusInProgress,
	})
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Wrong day",
		Date:      time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusInProgress,
	})

	rec := f.do(t, http.MethodGet, "/api/tasks/search?date=2026-04-02&status=In+Progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Match", resp[0].Topic)

	rec = f.do(t, http.MethodGet, "/api/tasks/search?status=Paused", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tasks/search?date=junk", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByStatus(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Waiting",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusPending,
	})

	rec := f.do(t, http.MethodGet, "/api/tasks/status/Pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Waiting", resp[0].Topic)

	rec = f.do(t, http.MethodGet, "/api/tasks/status/Bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployeeTaskPartitions(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	manager := int64(9)

	// The incomplete view is anchored to the real clock, so seed relative to it.
	today := domain.DateOnly(time.Now().UTC())
	yesterday := today.AddDate(0, 0, -1)
	nextWeek := today.AddDate(0, 0, 7)

	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Self-created",
		Date: today, StartDate: yesterday,
		Status: domain.StatusNotStarted,
	})
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Handed down", AssignedBy: &manager,
		Date: today, StartDate: yesterday,
		Status: domain.StatusCompleted,
	})
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Not started yet",
		Date: nextWeek, StartDate: nextWeek,
		Status: domain.StatusNotStarted,
	})
	f.seed(t, &domain.Task{
		EmployeeID: 2, Topic: "Someone else's",
		Date: today, StartDate: yesterday,
		Status: domain.StatusNotStarted,
	})

	var resp []TaskResponse

	rec := f.do(t, http.MethodGet, "/api/employees/1/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 3)

	rec = f.do(t, http.MethodGet, "/api/employees/1/tasks/private", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Self-created", resp[0].Topic)

	rec = f.do(t, http.MethodGet, "/api/employees/1/tasks/assigned", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Handed down", resp[0].Topic)

	// Incomplete view: only incomplete tasks whose planned window contains
	// today. The completed task and the not-yet-started window drop out.
	rec = f.do(t, http.MethodGet, "/api/employees/1/tasks/incomplete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Self-created", resp[0].Topic)

	rec = f.do(t, http.MethodGet, "/api/employees/0/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Doomed",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusNotStarted,
	})

	rec := f.do(t, http.MethodDelete, "/api/tasks/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogAndReadDailyHours(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	f.seed(t, &domain.Task{
		EmployeeID: 1, Topic: "Report",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusInProgress,
	})

	rec := f.do(t, http.MethodPost, "/api/tasks/1/hours", map[string]any{"hours_spent": 3})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Same day again; the later value replaces the first.
	rec = f.do(t, http.MethodPost, "/api/tasks/1/hours", map[string]any{"hours_spent": 5})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tasks/1/daily-hours", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []DailyHoursResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 5, resp[0].HoursSpent)

	rec = f.do(t, http.MethodPost, "/api/tasks/1/hours", map[string]any{"hours_spent": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tasks/99/hours", map[string]any{"hours_spent": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// failingReminderEmployees aborts the reminder pass to exercise the error path.
type failingReminderEmployees struct{}

func (failingReminderEmployees) GetByRole(context.Context, domain.Role) ([]*domain.EmployeeRef, error) {
	return nil, errors.New("database gone")
}

type noopSink struct{}

func (noopSink) Send(context.Context, string, string, string) error { return nil }

func TestJobsHandlerTriggers(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)

	reminders, err := service.NewReminderService(failingReminderEmployees{}, f.tasks, noopSink{}, nil)
	require.NoError(t, err)

	jobs := NewJobsHandler(f.service, reminders, nil)

	r := chi.NewRouter()
	r.Post("/api/jobs/rollover", jobs.TriggerRollover)
	r.Post("/api/jobs/overdue", jobs.TriggerOverdue)
	r.Post("/api/jobs/reminders", jobs.TriggerReminders)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/rollover", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	assert.Equal(t, int64(0), batch.Count)

	req = httptest.NewRequest(http.MethodPost, "/api/jobs/overdue", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Roster failure surfaces as a server error, not a partial pass.
	req = httptest.NewRequest(http.MethodPost, "/api/jobs/reminders", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
