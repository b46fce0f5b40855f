// Package schedule resolves which lessons a user attends on a given day.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/parity"
	"asu_schedule_bot/internal/store"
)

// LessonSource is the part of the store the resolver reads.
type LessonSource interface {
	LessonsByGroup(ctx context.Context, groupID int64, subgroup int, filter store.LessonFilter) ([]domain.Lesson, error)
	LessonsByTeacher(ctx context.Context, teacherKey string, filter store.LessonFilter) ([]domain.Lesson, error)
}

type resolveFunc func(ctx context.Context, user domain.User, filter store.LessonFilter) ([]domain.Lesson, error)

// Day is the resolved schedule of one calendar date.
type Day struct {
	Weekday  int
	EvenWeek bool
	Lessons  []domain.Lesson
}

// Resolver answers lesson queries for students and teachers.
type Resolver struct {
	lessons    LessonSource
	parity     parity.Calculator
	loc        *time.Location
	logger     *logrus.Entry
	strategies map[domain.Role]resolveFunc
}

// NewResolver builds a Resolver. Dates passed to Day are interpreted in loc.
func NewResolver(lessons LessonSource, calc parity.Calculator, loc *time.Location, logger *logrus.Entry) *Resolver {
	if logger == nil {
		logger = logging.Logger()
	}
	if loc == nil {
		loc = time.UTC
	}

	r := &Resolver{
		lessons: lessons,
		parity:  calc,
		loc:     loc,
		logger:  logger,
	}
	r.strategies = map[domain.Role]resolveFunc{
		domain.RoleStudent: r.studentLessons,
		domain.RoleTeacher: r.teacherLessons,
	}
	return r
}

// Weekday returns the Monday-based weekday of t, Monday being 0.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Resolve returns the lessons the user attends on weekday in a week of the
// given parity, ordered by slot. A nil slot matches every slot.
func (r *Resolver) Resolve(ctx context.Context, user domain.User, weekday int, even bool, slot *int) ([]domain.Lesson, error) {
	if r == nil || r.lessons == nil {
		return nil, errors.New("schedule resolver is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("weekday %d out of range", weekday)
	}
	if slot != nil && *slot < 0 {
		return nil, fmt.Errorf("slot %d out of range", *slot)
	}
	if err := user.CheckRegistered(); err != nil {
		return nil, err
	}

	resolve, ok := r.strategies[user.Role]
	if !ok {
		return nil, domain.ErrNotRegistered
	}

	lessons, err := resolve(ctx, user, store.LessonFilter{Weekday: weekday, EvenWeek: even, Slot: slot})
	if err != nil {
		return nil, fmt.Errorf("resolve lessons: %w", err)
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Slot < lessons[j].Slot
	})

	r.logger.WithFields(logging.Fields{
		"event":   "schedule_resolved",
		"user_id": user.ID,
		"role":    user.Role,
		"weekday": weekday,
		"even":    even,
		"lessons": len(lessons),
	}).Debug("lessons resolved")

	return lessons, nil
}

// Day resolves the lessons of the calendar date of t in the resolver's timezone.
func (r *Resolver) Day(ctx context.Context, user domain.User, t time.Time) (Day, error) {
	if r == nil {
		return Day{}, errors.New("schedule resolver is not initialized")
	}

	local := t.In(r.loc)
	day := Day{
		Weekday:  Weekday(local),
		EvenWeek: r.parity.IsEven(local),
	}

	lessons, err := r.Resolve(ctx, user, day.Weekday, day.EvenWeek, nil)
	if err != nil {
		return Day{}, err
	}
	day.Lessons = lessons
	return day, nil
}

// IsEven reports the parity of the date of t in the resolver's timezone.
func (r *Resolver) IsEven(t time.Time) bool {
	return r.parity.IsEven(t.In(r.loc))
}

func (r *Resolver) studentLessons(ctx context.Context, user domain.User, filter store.LessonFilter) ([]domain.Lesson, error) {
	return r.lessons.LessonsByGroup(ctx, user.GroupID, user.Subgroup, filter)
}

func (r *Resolver) teacherLessons(ctx context.Context, user domain.User, filter store.LessonFilter) ([]domain.Lesson, error) {
	return r.lessons.LessonsByTeacher(ctx, user.TeacherKey(), filter)
}
