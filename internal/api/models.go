package api

import (
	"fmt"
	"time"

	"github.com/worktrack/worktrack-api/internal/domain"
)

// dateLayout is the wire format for working and start dates.
const dateLayout = "2006-01-02"

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	EmployeeID      int64   `json:"employee_id"      validate:"required,gt=0"`
	Topic           string  `json:"topic"            validate:"required"`
	SubTopic        string  `json:"sub_topic"`
	Description     string  `json:"description"`
	Date            string  `json:"date"             validate:"required,datetime=2006-01-02"`
	StartDate       string  `json:"start_date"       validate:"required,datetime=2006-01-02"`
	EndDate         *string `json:"end_date"         validate:"omitempty,datetime=2006-01-02"`
	ExpectedHours   int     `json:"expected_hours"   validate:"gte=0"`
	CompletedHours  int     `json:"completed_hours"  validate:"gte=0"`
	Priority        int     `json:"priority"`
	Status          string  `json:"status"`
	AssignedBy      *int64  `json:"assigned_by"      validate:"omitempty,gt=0"`
	AssignedManager *string `json:"assigned_manager"`
}

// UpdateTaskRequest is the request body for a lifecycle update. The status is
// mandatory; date fields are ignored when the update completes the task.
type UpdateTaskRequest struct {
	EmployeeID     int64   `json:"employee_id"     validate:"required,gt=0"`
	Topic          string  `json:"topic"           validate:"required"`
	SubTopic       string  `json:"sub_topic"`
	Description    string  `json:"description"`
	Date           string  `json:"date"            validate:"required,datetime=2006-01-02"`
	StartDate      string  `json:"start_date"      validate:"required,datetime=2006-01-02"`
	EndDate        *string `json:"end_date"        validate:"omitempty,datetime=2006-01-02"`
	ExpectedHours  int     `json:"expected_hours"  validate:"gte=0"`
	CompletedHours int     `json:"completed_hours" validate:"gte=0"`
	Priority       int     `json:"priority"`
	Status         string  `json:"status"          validate:"required"`
}

// LogHoursRequest is the request body for the daily-hours upsert.
type LogHoursRequest struct {
	HoursSpent int `json:"hours_spent" validate:"gte=0"`
}

// TaskResponse is the wire representation of a task.
type TaskResponse struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employee_id"`
	Topic           string     `json:"topic"`
	SubTopic        string     `json:"sub_topic,omitempty"`
	Description     string     `json:"description,omitempty"`
	Date            string     `json:"date"`
	StartDate       string     `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	ExpectedHours   int        `json:"expected_hours"`
	CompletedHours  int        `json:"completed_hours"`
	Priority        int        `json:"priority"`
	Status          string     `json:"status"`
	AssignedBy      *int64     `json:"assigned_by,omitempty"`
	AssignedDate    *time.Time `json:"assigned_date,omitempty"`
	AssignedManager *string    `json:"assigned_manager,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DailyHoursResponse is the wire representation of one ledger entry.
type DailyHoursResponse struct {
	TaskID     int64  `json:"task_id"`
	Date       string `json:"date"`
	HoursSpent int    `json:"hours_spent"`
}

// BatchResponse reports the outcome of a manually triggered batch pass.
type BatchResponse struct {
	Count int64 `json:"count"`
}

// ReminderPassResponse reports the outcome of a manual reminder pass.
type ReminderPassResponse struct {
	Sent int `json:"sent"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:              task.ID,
		EmployeeID:      task.EmployeeID,
		Topic:           task.Topic,
		SubTopic:        task.SubTopic,
		Description:     task.Description,
		Date:            task.Date.Format(dateLayout),
		StartDate:       task.StartDate.Format(dateLayout),
		EndDate:         task.EndDate,
		ExpectedHours:   task.ExpectedHours,
		CompletedHours:  task.CompletedHours,
		Priority:        task.Priority,
		Status:          string(task.Status),
		AssignedBy:      task.AssignedBy,
		AssignedDate:    task.AssignedDate,
		AssignedManager: task.AssignedManager,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}

func entriesToResponse(entries []*domain.DailyHoursEntry) []DailyHoursResponse {
	out := make([]DailyHoursResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, DailyHoursResponse{
			TaskID:     entry.TaskID,
			Date:       entry.Date.Format(dateLayout),
			HoursSpent: entry.HoursSpent,
		})
	}
	return out
}

// parseDate parses a wire-format date into a UTC day.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d.UTC(), nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
