// Package scheduler runs named maintenance jobs once per day at configured
// wall-clock times, using plain goroutines and timers rather than an external
// cron dependency.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one daily maintenance pass. It reports how many rows it touched.
type JobFunc func(ctx context.Context) (int64, error)

// Job pairs a daily pass with its name and fire time.
type Job struct {
	Name string
	At   TimeOfDay
	Run  JobFunc
}

// DailyScheduler fires each registered job once per day at its configured
// time. A job's error is logged and swallowed; the next day's run proceeds
// regardless.
type DailyScheduler struct {
	jobs       []Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger

	// now is the clock; swapped in tests.
	now func() time.Time
}

// NewDailyScheduler creates a scheduler for the given jobs.
func NewDailyScheduler(jobs []Job, logger *slog.Logger) *DailyScheduler {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &DailyScheduler{
		jobs:       jobs,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With(slog.String("component", "daily_scheduler")),
		now:        time.Now,
	}
}

// Start launches one goroutine per job. Each goroutine sleeps until the job's
// next fire time, runs the pass, and goes back to sleep for the following day.
func (s *DailyScheduler) Start() {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(job)
	}

	s.logger.Info("scheduler started", slog.Int("job_count", len(s.jobs)))
}

// Stop cancels all job loops and waits for them to exit. A pass already in
// flight observes the cancelled context through its own ctx parameter.
func (s *DailyScheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// RunOnce triggers the named job immediately, outside its daily cadence.
func (s *DailyScheduler) RunOnce(ctx context.Context, name string) (int64, error) {
	for _, job := range s.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return 0, fmt.Errorf("no job named %q", name)
}

func (s *DailyScheduler) runLoop(job Job) {
	defer s.wg.Done()

	log := s.logger.With(slog.String("job", job.Name))

	for {
		next := NextRun(s.now(), job.At)
		log.Debug("job scheduled", slog.Time("next_run", next))

		if !s.sleepUntil(next) {
			return
		}

		start := s.now()
		count, err := job.Run(s.ctx)
		if err != nil {
			// One failed pass must not kill the loop; tomorrow retries.
			log.Error("job run failed",
				slog.String("error", err.Error()),
				slog.Duration("elapsed", s.now().Sub(start)))
			continue
		}

		log.Info("job run complete",
			slog.Int64("rows_affected", count),
			slog.Duration("elapsed", s.now().Sub(start)))
	}
}

// sleepUntil blocks until the given time or until the scheduler is stopped.
// Returns false on shutdown.
func (s *DailyScheduler) sleepUntil(t time.Time) bool {
	timer := time.NewTimer(t.Sub(s.now()))
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// NextRun computes the first instant at or after now that falls on the given
// wall-clock time. A fire time already past today schedules for tomorrow.
func NextRun(now time.Time, at TimeOfDay) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
