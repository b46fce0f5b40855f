// Package notify schedules and runs the broadcast passes that deliver daily
// schedules and next-lesson reminders to opted-in users.
package notify

import (
	"errors"
	"fmt"
	"time"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/store"
	"asu_schedule_bot/internal/timetable"
)

// Kind distinguishes the two broadcast flavors.
type Kind string

const (
	// KindDaily sends a full day schedule to users subscribed at Payload.Hour.
	KindDaily Kind = "daily"
	// KindNextLesson reminds every subscriber of the lessons in Payload.Slot.
	KindNextLesson Kind = "next_lesson"
)

// dayOffsets maps each delivery hour to the day it previews: the morning
// pass covers today, the evening pass covers tomorrow.
var dayOffsets = map[int]int{
	8:  0,
	20: 1,
}

// TimeOfDay is a wall-clock time in the bot timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Payload tells a firing what to send.
type Payload struct {
	Kind      Kind
	Hour      int
	DayOffset int
	Slot      int
}

// Trigger is one recurring daily firing.
type Trigger struct {
	At      TimeOfDay
	Payload Payload
}

// Name identifies the trigger in logs.
func (t Trigger) Name() string {
	if t.Payload.Kind == KindNextLesson {
		return fmt.Sprintf("%s_%d", t.Payload.Kind, t.Payload.Slot)
	}
	return fmt.Sprintf("%s_%s", t.Payload.Kind, t.At)
}

// Triggers lists the daily passes for every delivery hour followed by one
// reminder per slot, fired when the slot ends and announcing the next one.
func Triggers(table timetable.Table) ([]Trigger, error) {
	triggers := make([]Trigger, 0, len(domain.NotifyHours)+len(table))

	for _, hour := range domain.NotifyHours {
		offset, ok := dayOffsets[hour]
		if !ok {
			return nil, fmt.Errorf("no day offset for notify hour %d", hour)
		}
		triggers = append(triggers, Trigger{
			At:      TimeOfDay{Hour: hour},
			Payload: Payload{Kind: KindDaily, Hour: hour, DayOffset: offset},
		})
	}

	for _, slot := range table.Slots() {
		hour, minute, err := table.End(slot)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, Trigger{
			At:      TimeOfDay{Hour: hour, Minute: minute},
			Payload: Payload{Kind: KindNextLesson, Slot: slot + 1},
		})
	}

	return triggers, nil
}

// Target is what one firing processes: the calendar date to resolve, the
// subscribers to visit and, for reminders, the slot to look up.
type Target struct {
	Date   time.Time
	Filter store.SubscriberFilter
	Slot   *int
}

// Plan computes the Target of a firing at now. It is pure; now should already
// be in the bot timezone.
func Plan(p Payload, now time.Time) (Target, error) {
	switch p.Kind {
	case KindDaily:
		if !domain.ValidNotifyHour(p.Hour) {
			return Target{}, fmt.Errorf("plan daily pass: %w: %d", domain.ErrInvalidNotifyHour, p.Hour)
		}
		hour := p.Hour
		return Target{
			Date:   now.AddDate(0, 0, p.DayOffset),
			Filter: store.SubscriberFilter{NotifyHour: &hour},
		}, nil
	case KindNextLesson:
		if p.Slot < 0 {
			return Target{}, fmt.Errorf("plan reminder pass: slot %d out of range", p.Slot)
		}
		slot := p.Slot
		return Target{Date: now, Slot: &slot}, nil
	default:
		return Target{}, errors.New("plan pass: unknown payload kind " + string(p.Kind))
	}
}
