package domain

import (
	"time"
)

// Status represents the lifecycle state of a task.
// The wire values match the original tracker so existing clients keep working.
type Status string

// Possible task status values.
const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusPending    Status = "Pending"
	StatusCompleted  Status = "Completed"
	StatusOverdue    Status = "Overdue"
)

// Valid reports whether s is one of the defined status values.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state. Completed tasks are never
// touched by the background processors, though callers may still edit them.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Task represents one unit of trackable work owned by an employee.
//
// Date is the working date, the calendar day the task is considered active
// on, and is distinct from the planned StartDate/EndDate window. EndDate is
// nil until a planned boundary is set or the task completes; completion
// stamps it with the completion instant.
//
// A task with AssignedBy set is an "assigned" task, otherwise "private".
// The partition is derived, not stored separately.
type Task struct {
	ID              int64      `json:"task_id"`
	EmployeeID      int64      `json:"employee_id"`
	Topic           string     `json:"topic"`
	SubTopic        string     `json:"sub_topic"`
	Description     string     `json:"description"`
	Date            time.Time  `json:"date"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	ExpectedHours   int        `json:"expected_hours"`
	CompletedHours  int        `json:"completed_hours"`
	Priority        int        `json:"priority"`
	Status          Status     `json:"status"`
	AssignedBy      *int64     `json:"assigned_by,omitempty"`
	AssignedDate    *time.Time `json:"assigned_date,omitempty"`
	AssignedManager *string    `json:"assigned_manager,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TaskUpdate carries the caller-supplied fields for a lifecycle update.
// Every field is applied verbatim except where the transition rules in
// Apply say otherwise.
type TaskUpdate struct {
	EmployeeID     int64
	Topic          string
	SubTopic       string
	Description    string
	Date           time.Time
	StartDate      time.Time
	EndDate        *time.Time
	ExpectedHours  int
	CompletedHours int
	Priority       int
	Status         Status
}

// NewTask creates a task from caller-supplied fields, defaulting the status
// to "Not Started" when omitted. Returns a validation error for an unknown
// status value.
func NewTask(employeeID int64, topic, subTopic, description string, date, startDate time.Time, endDate *time.Time, expectedHours, completedHours, priority int, status Status) (*Task, error) {
	if status == "" {
		status = StatusNotStarted
	}
	if !status.Valid() {
		return nil, NewValidationError("status", string(status), ErrInvalidStatus)
	}

	now := time.Now().UTC()
	return &Task{
		EmployeeID:     employeeID,
		Topic:          topic,
		SubTopic:       subTopic,
		Description:    description,
		Date:           DateOnly(date),
		StartDate:      DateOnly(startDate),
		EndDate:        endDate,
		ExpectedHours:  expectedHours,
		CompletedHours: completedHours,
		Priority:       priority,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Apply mutates the task with the supplied update, enforcing the lifecycle
// rules. It either applies the whole update (subject to the per-field rules
// below) or returns an error leaving the task unchanged.
//
// Rules:
//   - An unknown status value fails the whole update.
//   - The direct edge "Not Started" -> "Completed" is illegal; every other
//     transition, including backward moves, is permitted.
//   - Completing a non-completed task stamps EndDate with now and ignores
//     the caller-supplied Date, StartDate and EndDate for this request.
//   - Otherwise the caller's working Date applies only when it is on or
//     after the stored date (day granularity); an earlier date is silently
//     dropped while all other fields still apply.
func (t *Task) Apply(u TaskUpdate, now time.Time) error {
	if !u.Status.Valid() {
		return NewValidationError("status", string(u.Status), ErrInvalidStatus)
	}

	if t.Status == StatusNotStarted && u.Status == StatusCompleted {
		return NewValidationError("status", "direct completion from 'Not Started'", ErrIllegalTransition)
	}

	t.EmployeeID = u.EmployeeID
	t.Topic = u.Topic
	t.SubTopic = u.SubTopic
	t.Description = u.Description

	if u.Status == StatusCompleted && t.Status != StatusCompleted {
		completedAt := now
		t.EndDate = &completedAt
	} else {
		if !DateOnly(u.Date).Before(DateOnly(t.Date)) {
			t.Date = DateOnly(u.Date)
		}
		t.StartDate = DateOnly(u.StartDate)
		t.EndDate = u.EndDate
	}

	t.ExpectedHours = u.ExpectedHours
	t.CompletedHours = u.CompletedHours
	t.Priority = u.Priority
	t.Status = u.Status
	t.UpdatedAt = now

	return nil
}

// Assigned reports whether the task was assigned by a manager rather than
// self-created.
func (t *Task) Assigned() bool {
	return t.AssignedBy != nil
}

// DateOnly truncates a timestamp to day granularity in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
