// Package subscription manages per-user notification preferences and the
// confirmed bulk mutations available to administrators.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
)

// ConfirmToken must appear among the arguments of a bulk mutation.
const ConfirmToken = "confirm"

type preferenceStore interface {
	ToggleNotify(ctx context.Context, userID int64) (bool, error)
	SetNotifyHour(ctx context.Context, userID int64, hour int) error
	DisableAllNotify(ctx context.Context) (int64, error)
	DeleteAllLessons(ctx context.Context) (int64, error)
}

// Service applies subscription changes. Each change is a single store
// statement so concurrent requests never lose an update.
type Service struct {
	store  preferenceStore
	logger *logrus.Entry
}

// NewService constructs a Service for the provided store.
func NewService(store preferenceStore, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Service{
		store:  store,
		logger: logger,
	}
}

// Toggle flips the daily opt-in flag and returns the new value.
func (s *Service) Toggle(ctx context.Context, userID int64) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}

	enabled, err := s.store.ToggleNotify(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("toggle notify: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"event":   "notify_toggled",
		"user_id": userID,
		"enabled": enabled,
	}).Info("toggled daily notifications")

	return enabled, nil
}

// SetHour selects the daily delivery hour and enables the opt-in flag.
func (s *Service) SetHour(ctx context.Context, userID int64, hour int) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if !domain.ValidNotifyHour(hour) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidNotifyHour, hour)
	}

	if err := s.store.SetNotifyHour(ctx, userID, hour); err != nil {
		return fmt.Errorf("set notify hour: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"event":   "notify_hour_set",
		"user_id": userID,
		"hour":    hour,
	}).Info("updated notify hour")

	return nil
}

// DisableAll turns daily notifications off for every user.
func (s *Service) DisableAll(ctx context.Context, args []string) (int64, error) {
	return s.bulk(ctx, args, "disable all notify", "notify_disabled_all", s.disableAll)
}

// DeleteAllLessons removes every imported lesson.
func (s *Service) DeleteAllLessons(ctx context.Context, args []string) (int64, error) {
	return s.bulk(ctx, args, "delete all lessons", "lessons_deleted_all", s.deleteLessons)
}

func (s *Service) disableAll(ctx context.Context) (int64, error) {
	return s.store.DisableAllNotify(ctx)
}

func (s *Service) deleteLessons(ctx context.Context) (int64, error) {
	return s.store.DeleteAllLessons(ctx)
}

func (s *Service) bulk(ctx context.Context, args []string, op, event string, run func(context.Context) (int64, error)) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if !Confirmed(args) {
		return 0, domain.ErrUnconfirmed
	}

	affected, err := run(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.WithFields(logging.Fields{
		"event":    event,
		"affected": affected,
	}).Warn("bulk mutation applied")

	return affected, nil
}

// Confirmed reports whether args carry ConfirmToken.
func Confirmed(args []string) bool {
	for _, arg := range args {
		if strings.EqualFold(strings.TrimSpace(arg), ConfirmToken) {
			return true
		}
	}
	return false
}

func (s *Service) check(ctx context.Context) error {
	if s == nil || s.store == nil {
		return errors.New("subscription service is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	return nil
}
