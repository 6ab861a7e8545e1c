// Package daemon provides continuous operation modes: periodic re-checks
// on a fixed interval and debounced re-checks on filesystem change.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/linkcheck/internal/errors"
)

// Scheduler wraps gocron for periodic validation runs.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create scheduler")
	}
	return &Scheduler{scheduler: s}, nil
}

// SchedulePeriodicCheck registers task to run every interval. Returns the
// job ID for later management.
func (s *Scheduler) SchedulePeriodicCheck(interval time.Duration, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("periodic-linkcheck"),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to create periodic check job")
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to stop scheduler")
	}
	return nil
}
