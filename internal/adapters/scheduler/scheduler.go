// Package scheduler fires the weekly poll reset on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
	"github.com/vncsmyrnk/weeklypoll/internal/logging"
)

// DefaultSchedule is Sunday 18:00 (seconds, minutes, hours, day of month,
// month, day of week).
const DefaultSchedule = "0 0 18 * * SUN"

const runTimeout = time.Minute

type Scheduler struct {
	runner     *cron.Cron
	schedule   cron.Schedule
	location   *time.Location
	dispatcher ports.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// New validates spec and registers the reset job. A nil location means the
// system time zone.
func New(spec string, location *time.Location, dispatcher ports.Dispatcher, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	schedule, err := cron.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		runner:     cron.NewWithLocation(location),
		schedule:   schedule,
		location:   location,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
	s.runner.Schedule(schedule, cron.FuncJob(s.fire))
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduling weekly reset", "timezone", s.location.String(), "next", s.Next())
	s.runner.Start()
}

func (s *Scheduler) Stop() {
	s.runner.Stop()
}

// Next returns the next reset time after now.
func (s *Scheduler) Next() time.Time {
	return s.schedule.Next(s.now().In(s.location))
}

// Run dispatches one scheduled reset. The event ID is derived from the
// minute it fires in, so replicas sharing a deduplicator reset only once.
// The redis and postgres stores share one; the memory and file stores are
// single-process.
func (s *Scheduler) Run(ctx context.Context) error {
	fired := s.now().In(s.location).Truncate(time.Minute)
	event := domain.ScheduledReset{ID: "scheduled-reset:" + fired.UTC().Format(time.RFC3339)}

	err := s.dispatcher.Handle(ctx, event)
	if errors.Is(err, domain.ErrDuplicateEvent) {
		s.logger.Debug("scheduled reset already handled", "event_id", event.ID)
		return nil
	}
	return err
}

func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		s.logger.Error("scheduled reset failed", "error", err)
		return
	}
	s.logger.Info("scheduled reset done", "next", s.Next())
}
