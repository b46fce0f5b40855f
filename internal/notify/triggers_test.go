package notify

import (
	"errors"
	"testing"
	"time"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/timetable"
)

func TestTriggersForStandardTable(t *testing.T) {
	triggers, err := Triggers(timetable.Standard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(triggers) != 8 {
		t.Fatalf("expected 2 daily and 6 slot triggers, got %d", len(triggers))
	}

	morning, evening := triggers[0], triggers[1]
	if morning.At != (TimeOfDay{Hour: 8}) || morning.Payload != (Payload{Kind: KindDaily, Hour: 8, DayOffset: 0}) {
		t.Fatalf("unexpected morning trigger %+v", morning)
	}
	if evening.At != (TimeOfDay{Hour: 20}) || evening.Payload != (Payload{Kind: KindDaily, Hour: 20, DayOffset: 1}) {
		t.Fatalf("unexpected evening trigger %+v", evening)
	}

	first, last := triggers[2], triggers[7]
	if first.At != (TimeOfDay{Hour: 8, Minute: 50}) || first.Payload != (Payload{Kind: KindNextLesson, Slot: 1}) {
		t.Fatalf("unexpected first slot trigger %+v", first)
	}
	if last.At != (TimeOfDay{Hour: 18, Minute: 5}) || last.Payload.Slot != 6 {
		t.Fatalf("unexpected last slot trigger %+v", last)
	}
}

func TestTriggersForAlternateTable(t *testing.T) {
	triggers, err := Triggers(timetable.Alternate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(triggers) != 7 {
		t.Fatalf("expected 7 triggers, got %d", len(triggers))
	}
	if got := triggers[6]; got.At != (TimeOfDay{Hour: 12, Minute: 30}) || got.Payload.Slot != 5 {
		t.Fatalf("unexpected last trigger %+v", got)
	}
}

func TestTriggersRejectBrokenTable(t *testing.T) {
	if _, err := Triggers(timetable.Table{1: {Start: "9:00", End: "late"}}); err == nil {
		t.Fatalf("expected error for unparsable end time")
	}
}

func TestTriggerName(t *testing.T) {
	tests := []struct {
		trigger Trigger
		want    string
	}{
		{Trigger{At: TimeOfDay{Hour: 8}, Payload: Payload{Kind: KindDaily, Hour: 8}}, "daily_08:00"},
		{Trigger{At: TimeOfDay{Hour: 10, Minute: 35}, Payload: Payload{Kind: KindNextLesson, Slot: 2}}, "next_lesson_2"},
	}

	for _, tt := range tests {
		if got := tt.trigger.Name(); got != tt.want {
			t.Fatalf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestPlanDailyShiftsDate(t *testing.T) {
	now := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		payload Payload
		wantDay int
	}{
		{Payload{Kind: KindDaily, Hour: 8, DayOffset: 0}, 9},
		{Payload{Kind: KindDaily, Hour: 20, DayOffset: 1}, 10},
	}

	for _, tt := range tests {
		target, err := Plan(tt.payload, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target.Date.Day() != tt.wantDay {
			t.Fatalf("hour %d: expected day %d, got %v", tt.payload.Hour, tt.wantDay, target.Date)
		}
		if target.Filter.NotifyHour == nil || *target.Filter.NotifyHour != tt.payload.Hour {
			t.Fatalf("hour %d: unexpected filter %+v", tt.payload.Hour, target.Filter)
		}
		if target.Slot != nil {
			t.Fatalf("daily pass must not filter by slot")
		}
	}
}

func TestPlanNextLesson(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 35, 0, 0, time.UTC)

	target, err := Plan(Payload{Kind: KindNextLesson, Slot: 2}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !target.Date.Equal(now) || target.Slot == nil || *target.Slot != 2 {
		t.Fatalf("unexpected target %+v", target)
	}
	if target.Filter.NotifyHour != nil {
		t.Fatalf("reminders go to every subscriber, got filter %+v", target.Filter)
	}
}

func TestPlanRejectsInvalidPayloads(t *testing.T) {
	now := time.Now()

	if _, err := Plan(Payload{Kind: KindDaily, Hour: 9}, now); !errors.Is(err, domain.ErrInvalidNotifyHour) {
		t.Fatalf("expected ErrInvalidNotifyHour, got %v", err)
	}
	if _, err := Plan(Payload{Kind: KindNextLesson, Slot: -1}, now); err == nil {
		t.Fatalf("expected error for negative slot")
	}
	if _, err := Plan(Payload{Kind: "weekly"}, now); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
