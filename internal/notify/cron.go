package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/logging"
)

// Registrar registers a function to run every day at a wall-clock time.
type Registrar interface {
	RegisterDaily(at TimeOfDay, fn func()) error
}

// Firer runs one broadcast pass.
type Firer interface {
	Fire(ctx context.Context, payload Payload) (Result, error)
}

// CronScheduler is the production Registrar backed by robfig/cron.
type CronScheduler struct {
	cron   *cron.Cron
	logger *logrus.Entry
}

// NewCronScheduler creates a stopped scheduler evaluating times in loc. Job
// panics are recovered and logged.
func NewCronScheduler(loc *time.Location, logger *logrus.Entry) *CronScheduler {
	if logger == nil {
		logger = logging.Logger()
	}
	if loc == nil {
		loc = time.UTC
	}

	cronLog := logging.CronLogger(logger)
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		logger: logger,
	}
}

// RegisterDaily implements Registrar.
func (s *CronScheduler) RegisterDaily(at TimeOfDay, fn func()) error {
	if s == nil || s.cron == nil {
		return errors.New("cron scheduler is not initialized")
	}
	if fn == nil {
		return errors.New("job is required")
	}
	if at.Hour < 0 || at.Hour > 23 || at.Minute < 0 || at.Minute > 59 {
		return fmt.Errorf("invalid time of day %s", at)
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("%d %d * * *", at.Minute, at.Hour), fn); err != nil {
		return fmt.Errorf("add cron job at %s: %w", at, err)
	}
	return nil
}

// Start begins firing jobs in the background.
func (s *CronScheduler) Start() {
	s.cron.Start()
	s.logger.WithFields(logging.Fields{
		"event": "scheduler_started",
		"jobs":  len(s.cron.Entries()),
	}).Info("notification scheduler started")
}

// Stop prevents new firings and waits for running jobs or ctx, whichever
// comes first.
func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

// Register binds every trigger to a broadcast pass on f. Passes run with ctx,
// so cancelling it aborts in-flight passes at the next recipient.
func Register(ctx context.Context, reg Registrar, triggers []Trigger, f Firer, logger *logrus.Entry) error {
	if reg == nil || f == nil {
		return errors.New("registrar and broadcaster are required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	for _, tr := range triggers {
		tr := tr
		job := func() {
			if _, err := f.Fire(ctx, tr.Payload); err != nil {
				logger.WithFields(logging.Fields{
					"event":   "broadcast_failed",
					"trigger": tr.Name(),
					"error":   err,
				}).Error("broadcast pass failed")
			}
		}
		if err := reg.RegisterDaily(tr.At, job); err != nil {
			return fmt.Errorf("register %s: %w", tr.Name(), err)
		}

		logger.WithFields(logging.Fields{
			"event":   "trigger_registered",
			"trigger": tr.Name(),
			"at":      tr.At.String(),
		}).Debug("notification trigger registered")
	}
	return nil
}
