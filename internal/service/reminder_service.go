package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/platform/logger"
	"github.com/worktrack/worktrack-api/internal/store"
)

// reminderSubject is the subject line of every digest email.
const reminderSubject = "Daily Task Update Reminder"

// NotificationSink delivers a rendered message to a recipient. Delivery is
// best-effort with an at-least-once contract; a sink failure for one
// recipient never propagates into the caller's remaining work.
type NotificationSink interface {
	Send(ctx context.Context, recipient, subject, bodyHTML string) error
}

// digestTemplate renders the per-employee task digest. Each task contributes
// its ID, topic, status, working date, and description.
var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body>
<h2>Daily Task Update Reminder</h2>
<p>Hello {{.Username}},</p>
<p>Please update your tasks for today. Here are your current tasks:</p>
{{range .Tasks}}<p>Task ID: {{.ID}}</p>
<p>Topic: {{.Topic}}</p>
<p>Status: {{.Status}}</p>
<p>Date: {{.Date.Format "2006-01-02"}}</p>
<p>Description: {{.Description}}</p>
<hr/>
{{end}}<p>Thank you!</p>
</body>
</html>`))

// ReminderService performs the daily reminder pass: one digest email per
// contributor listing that employee's tasks.
type ReminderService struct {
	employees store.EmployeeStore
	tasks     store.TaskStore
	sink      NotificationSink
	logger    *slog.Logger

	now func() time.Time
}

// NewReminderService creates a new ReminderService.
// It returns an error if any of the required dependencies are nil.
func NewReminderService(
	employees store.EmployeeStore,
	tasks store.TaskStore,
	sink NotificationSink,
	log *slog.Logger,
) (*ReminderService, error) {
	if employees == nil {
		return nil, domain.NewValidationError("employees", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if sink == nil {
		return nil, domain.NewValidationError("sink", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReminderService{
		employees: employees,
		tasks:     tasks,
		sink:      sink,
		logger:    log.With(slog.String("component", "reminder_service")),
		now:       time.Now,
	}, nil
}

// SendReminders executes one reminder pass: every employee holding the base
// contributor role receives a single digest of their tasks. A fetch or send
// failure for one employee is logged and the pass continues for the rest;
// only a failure to list the contributors themselves aborts the pass.
// Returns the number of digests handed to the sink.
func (s *ReminderService) SendReminders(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	contributors, err := s.employees.GetByRole(ctx, domain.RoleContributor)
	if err != nil {
		return 0, NewTaskServiceError("send_reminders", "failed to list contributors", err)
	}

	log.Info("starting reminder pass", slog.Int("contributor_count", len(contributors)))

	sent := 0
	for _, employee := range contributors {
		if err := s.sendDigest(ctx, employee); err != nil {
			log.Error("failed to send reminder digest",
				slog.Int64("employee_id", employee.ID),
				slog.String("email", employee.Email),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	log.Info("reminder pass complete",
		slog.Int("digests_sent", sent),
		slog.Int("contributor_count", len(contributors)))
	return sent, nil
}

// sendDigest fetches one employee's tasks, renders the digest, and hands it
// to the notification sink.
func (s *ReminderService) sendDigest(ctx context.Context, employee *domain.EmployeeRef) error {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{EmployeeID: &employee.ID})
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	body, err := renderDigest(employee.Username, tasks)
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	if err := s.sink.Send(ctx, employee.Email, reminderSubject, body); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	return nil
}

// renderDigest produces the HTML body for one employee's digest.
func renderDigest(username string, tasks []*domain.Task) (string, error) {
	var buf bytes.Buffer
	err := digestTemplate.Execute(&buf, struct {
		Username string
		Tasks    []*domain.Task
	}{
		Username: username,
		Tasks:    tasks,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
