// Package scheduler drives the unattended render loop: one pipeline run
// per interval, for as long as the daemon lives.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// Runner is the unit of work the scheduler repeats. The report is already
// logged and recorded by the pipeline; the scheduler discards it.
type Runner interface {
	Run(ctx context.Context) domain.RunReport
}

// Scheduler periodically runs the radar pipeline.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler that runs runner every interval.
func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll() // never overlap two renders of the same region
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job (first run immediately) and starts the
// underlying scheduler. The supplied context bounds each run.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.runner.Run(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("render scheduler started", "interval", s.interval.String())
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
