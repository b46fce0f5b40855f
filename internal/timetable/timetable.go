// Package timetable maps lesson slots to their wall-clock time ranges.
package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Range is the start and end of a slot as displayed, e.g. "09:00" and "10:35".
type Range struct {
	Start string
	End   string
}

// Table maps slot numbers to time ranges.
type Table map[int]Range

// Standard is the regular lesson schedule.
func Standard() Table {
	return Table{
		0: {"7:15", "8:50"},
		1: {"09:00", "10:35"},
		2: {"10:45", "12:20"},
		3: {"13:00", "14:35"},
		4: {"14:45", "16:20"},
		5: {"16:30", "18:05"},
	}
}

// Alternate is the shortened lesson schedule.
func Alternate() Table {
	return Table{
		0: {"7:15", "8:50"},
		1: {"9:00", "9:45"},
		2: {"9:55", "10:40"},
		3: {"10:50", "11:35"},
		4: {"11:45", "12:30"},
	}
}

// Select returns Alternate when alternate is set, Standard otherwise.
func Select(alternate bool) Table {
	if alternate {
		return Alternate()
	}
	return Standard()
}

// Lookup returns the range of a slot.
func (t Table) Lookup(slot int) (Range, bool) {
	r, ok := t[slot]
	return r, ok
}

// Slots returns the configured slots in ascending order.
func (t Table) Slots() []int {
	slots := make([]int, 0, len(t))
	for slot := range t {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// End returns the parsed end time of a slot.
func (t Table) End(slot int) (hour, minute int, err error) {
	r, ok := t[slot]
	if !ok {
		return 0, 0, fmt.Errorf("slot %d is not in the time table", slot)
	}
	return ParseClock(r.End)
}

// ParseClock parses "H:MM" or "HH:MM".
func ParseClock(value string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, 0, fmt.Errorf("parse clock %q: missing colon", value)
	}
	if hour, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	if minute, err = strconv.Atoi(m); err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("parse clock %q: out of range", value)
	}
	return hour, minute, nil
}
