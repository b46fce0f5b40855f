package parity

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestIsEvenUsesISOWeek(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"week 1 of 2024", date(2024, time.January, 3), false},
		{"week 2 of 2024", date(2024, time.January, 8), true},
		// 2021-01-03 is a Sunday in ISO week 53 of 2020.
		{"prior year week 53", date(2021, time.January, 3), false},
		// 2024-12-30 is a Monday in ISO week 1 of 2025.
		{"next year week 1", date(2024, time.December, 30), false},
		{"sunday closes the week", date(2024, time.January, 14), true},
	}

	calc := New(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.IsEven(tt.day); got != tt.want {
				t.Fatalf("IsEven(%s) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestInvertNegates(t *testing.T) {
	plain, inverted := New(false), New(true)

	for d := 0; d < 21; d++ {
		day := date(2025, time.March, 1).AddDate(0, 0, d)
		if plain.IsEven(day) == inverted.IsEven(day) {
			t.Fatalf("expected inverted parity to differ on %s", day.Format("2006-01-02"))
		}
	}
}

func TestPeriodTwoWeeksWithinYear(t *testing.T) {
	for _, invert := range []bool{false, true} {
		calc := New(invert)
		start := date(2025, time.January, 1)
		for d := 0; d < 340; d++ {
			day := start.AddDate(0, 0, d)
			if calc.IsEven(day) != calc.IsEven(day.AddDate(0, 0, 14)) {
				t.Fatalf("invert=%v: parity differs between %s and two weeks later", invert, day.Format("2006-01-02"))
			}
		}
	}
}

func TestFiftyThreeWeekYearBoundary(t *testing.T) {
	calc := New(false)

	// 2026 has 53 ISO weeks: 2026-12-28 is week 53, 2027-01-04 is week 1.
	last := date(2026, time.December, 28)
	first := date(2027, time.January, 4)

	if _, w := last.ISOWeek(); w != 53 {
		t.Fatalf("expected week 53, got %d", w)
	}
	if calc.IsEven(last) || calc.IsEven(first) {
		t.Fatalf("expected both boundary weeks to be odd")
	}
}

func TestLabel(t *testing.T) {
	if Label(false) != "черная" || Label(true) != "красная" {
		t.Fatalf("unexpected labels %q/%q", Label(false), Label(true))
	}
}
