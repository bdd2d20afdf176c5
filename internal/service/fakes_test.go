package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/worktrack/worktrack-api/internal/domain"
	"github.com/worktrack/worktrack-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore mirroring the documented
// batch semantics, so service tests pin behavior without a database.
type fakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task

	listErr map[int64]error // per-employee List failures
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		tasks:   make(map[int64]*domain.Task),
		listErr: make(map[int64]error),
	}
}

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	task.ID = f.nextID
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) List(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if filter.EmployeeID != nil {
		if err := f.listErr[*filter.EmployeeID]; err != nil {
			return nil, err
		}
	}

	var out []*domain.Task
	for _, task := range f.tasks {
		if filter.EmployeeID != nil && task.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
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

func (f *fakeTaskStore) AdvanceLagging(_ context.Context, today time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	today = domain.DateOnly(today)
	var count int64
	for _, task := range f.tasks {
		switch task.Status {
		case domain.StatusNotStarted, domain.StatusInProgress, domain.StatusPending:
		default:
			continue
		}
		if task.Date.After(today) {
			continue
		}
		task.Date = task.Date.AddDate(0, 0, 1)
		count++
	}
	return count, nil
}

func (f *fakeTaskStore) MarkOverdue(_ context.Context, today time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	today = domain.DateOnly(today)
	var count int64
	for _, task := range f.tasks {
		switch task.Status {
		case domain.StatusNotStarted, domain.StatusInProgress:
		default:
			continue
		}
		if task.EndDate == nil || !task.EndDate.Before(today) {
			continue
		}
		task.Status = domain.StatusOverdue
		count++
	}
	return count, nil
}

func (f *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return f }

// fakeHoursStore is an in-memory store.HoursStore with upsert semantics.
type fakeHoursStore struct {
	mu      sync.Mutex
	entries map[int64]map[time.Time]int
}

func newFakeHoursStore() *fakeHoursStore {
	return &fakeHoursStore{entries: make(map[int64]map[time.Time]int)}
}

func (f *fakeHoursStore) Upsert(_ context.Context, entry *domain.DailyHoursEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	byDay, ok := f.entries[entry.TaskID]
	if !ok {
		byDay = make(map[time.Time]int)
		f.entries[entry.TaskID] = byDay
	}
	byDay[entry.Date] = entry.HoursSpent
	return nil
}

func (f *fakeHoursStore) ListByTask(_ context.Context, taskID int64) ([]*domain.DailyHoursEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.DailyHoursEntry
	for date, hours := range f.entries[taskID] {
		out = append(out, &domain.DailyHoursEntry{TaskID: taskID, Date: date, HoursSpent: hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeHoursStore) WithTx(_ *sql.Tx) store.HoursStore { return f }

// fakeEmployeeStore serves a fixed roster.
type fakeEmployeeStore struct {
	employees []*domain.EmployeeRef
	err       error
}

func (f *fakeEmployeeStore) GetByRole(_ context.Context, role domain.Role) ([]*domain.EmployeeRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.EmployeeRef
	for _, e := range f.employees {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out, nil
}

// sentMessage records one sink delivery.
type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// fakeSink records deliveries and can fail per recipient.
type fakeSink struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
}

func newFakeSink() *fakeSink {
	return &fakeSink{failFor: make(map[string]error)}
}

func (f *fakeSink) Send(_ context.Context, recipient, subject, bodyHTML string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failFor[recipient]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{Recipient: recipient, Subject: subject, Body: bodyHTML})
	return nil
}
