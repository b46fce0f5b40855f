// Package parity decides which half of the two-week lesson cycle a date falls in.
package parity

import "time"

const (
	oddLabel  = "черная"
	evenLabel = "красная"
)

// Calculator maps dates to week parity. The zero value uses plain ISO parity.
type Calculator struct {
	invert bool
}

// New returns a Calculator; invert swaps even and odd weeks.
func New(invert bool) Calculator {
	return Calculator{invert: invert}
}

// IsEven reports whether the ISO 8601 week containing t is even, negated when
// the calculator is inverted. The weekday and date of t are taken in t's own
// location, so callers convert to the bot timezone first.
//
// Years with 53 ISO weeks break the two-week period at the boundary: week 53
// and the following week 1 are both odd.
func (c Calculator) IsEven(t time.Time) bool {
	_, week := t.ISOWeek()
	return (week%2 == 0) != c.invert
}

// Label returns the human name of a parity.
func Label(even bool) string {
	if even {
		return evenLabel
	}
	return oddLabel
}
