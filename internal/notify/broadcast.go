package notify

import (
	"context"
	"errors"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/schedule"
	"asu_schedule_bot/internal/store"
)

// DefaultSendTimeout bounds a single delivery when Settings leaves it unset.
const DefaultSendTimeout = 10 * time.Second

// Sender delivers one HTML message to a chat.
type Sender interface {
	Send(ctx context.Context, recipientID int64, text string) error
}

// SubscriberSource lists recipients of broadcast passes.
type SubscriberSource interface {
	Subscribers(ctx context.Context, filter store.SubscriberFilter) ([]domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// LessonResolver resolves the lessons of a subscriber.
type LessonResolver interface {
	Resolve(ctx context.Context, user domain.User, weekday int, even bool, slot *int) ([]domain.Lesson, error)
	IsEven(t time.Time) bool
}

// Formatter renders broadcast messages.
type Formatter interface {
	Day(user domain.User, weekday int, even bool, lessons []domain.Lesson) string
	NextLesson(user domain.User, lessons []domain.Lesson) string
}

// Settings tune delivery.
type Settings struct {
	SendTimeout time.Duration
	Location    *time.Location
}

// Result summarizes one pass.
type Result struct {
	PassID     string
	Recipients int
	Sent       int
	Skipped    int
	Failed     int
}

// Broadcaster runs broadcast passes. A pass visits recipients one at a time;
// a failed delivery is logged and the pass moves on.
type Broadcaster struct {
	users    SubscriberSource
	resolver LessonResolver
	render   Formatter
	sender   Sender
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
	newID    func() string
	logger   *logrus.Entry
}

// NewBroadcaster wires a Broadcaster.
func NewBroadcaster(users SubscriberSource, resolver LessonResolver, render Formatter, sender Sender, settings Settings, logger *logrus.Entry) *Broadcaster {
	if logger == nil {
		logger = logging.Logger()
	}
	if settings.SendTimeout <= 0 {
		settings.SendTimeout = DefaultSendTimeout
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}

	return &Broadcaster{
		users:    users,
		resolver: resolver,
		render:   render,
		sender:   sender,
		timeout:  settings.SendTimeout,
		loc:      settings.Location,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Fire runs the pass described by payload against the current time.
func (b *Broadcaster) Fire(ctx context.Context, payload Payload) (Result, error) {
	if err := b.check(ctx); err != nil {
		return Result{}, err
	}

	res := Result{PassID: b.newID()}
	logger := logging.WithContext(b.logger, logging.Context{
		PassID:  res.PassID,
		Trigger: string(payload.Kind),
	})

	target, err := Plan(payload, b.now().In(b.loc))
	if err != nil {
		return res, err
	}

	users, err := b.users.Subscribers(ctx, target.Filter)
	if err != nil {
		return res, err
	}
	res.Recipients = len(users)

	weekday := schedule.Weekday(target.Date)
	even := b.resolver.IsEven(target.Date)

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			b.finish(logger, res)
			return res, err
		}

		lessons, err := b.resolver.Resolve(ctx, u, weekday, even, target.Slot)
		if errors.Is(err, domain.ErrNotRegistered) {
			res.Skipped++
			logger.WithFields(logging.Fields{
				"event":        "broadcast_skip_unregistered",
				"recipient_id": u.ID,
			}).Debug("subscriber is not registered")
			continue
		}
		if err != nil {
			res.Failed++
			logger.WithFields(logging.Fields{
				"event":        "broadcast_resolve_failed",
				"recipient_id": u.ID,
				"error":        err,
			}).Warn("failed to resolve lessons for subscriber")
			continue
		}

		var text string
		if payload.Kind == KindNextLesson {
			if len(lessons) == 0 {
				res.Skipped++
				continue
			}
			text = b.render.NextLesson(u, lessons)
		} else {
			text = b.render.Day(u, weekday, even, lessons)
		}

		b.deliver(ctx, logger, u.ID, text, &res)
	}

	b.finish(logger, res)
	return res, nil
}

// Announce sends text to every known user, HTML-escaped so it renders as
// typed.
func (b *Broadcaster) Announce(ctx context.Context, text string) (Result, error) {
	if err := b.check(ctx); err != nil {
		return Result{}, err
	}
	if text == "" {
		return Result{}, errors.New("announcement text is required")
	}

	res := Result{PassID: b.newID()}
	logger := logging.WithContext(b.logger, logging.Context{
		PassID:  res.PassID,
		Trigger: "announcement",
	})

	users, err := b.users.ListUsers(ctx)
	if err != nil {
		return res, err
	}
	res.Recipients = len(users)

	escaped := html.EscapeString(text)
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			b.finish(logger, res)
			return res, err
		}
		b.deliver(ctx, logger, u.ID, escaped, &res)
	}

	b.finish(logger, res)
	return res, nil
}

func (b *Broadcaster) deliver(ctx context.Context, logger *logrus.Entry, recipientID int64, text string, res *Result) {
	sendCtx, cancel := context.WithTimeout(ctx, b.timeout)
	err := b.sender.Send(sendCtx, recipientID, text)
	cancel()

	if err != nil {
		res.Failed++
		logger.WithFields(logging.Fields{
			"event":        "broadcast_delivery_failed",
			"recipient_id": recipientID,
			"error":        err,
		}).Warn("failed to deliver notification")
		return
	}
	res.Sent++
}

func (b *Broadcaster) finish(logger *logrus.Entry, res Result) {
	logger.WithFields(logging.Fields{
		"event":      "broadcast_pass_finished",
		"recipients": res.Recipients,
		"sent":       res.Sent,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
	}).Info("broadcast pass finished")
}

func (b *Broadcaster) check(ctx context.Context) error {
	if b == nil || b.users == nil || b.resolver == nil || b.render == nil || b.sender == nil {
		return errors.New("broadcaster is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	return nil
}
