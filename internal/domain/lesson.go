package domain

import "strings"

// Lesson is one class occurrence in the two-week cycle. Subgroup is
// AllSubgroups when the lesson applies to the whole group.
type Lesson struct {
	ID       int64  `json:"id"`
	Weekday  int    `json:"weekday"`
	Slot     int    `json:"slot"`
	Subject  string `json:"subject"`
	Teacher  string `json:"teacher,omitempty"`
	Room     string `json:"room,omitempty"`
	Format   string `json:"format,omitempty"`
	GroupID  int64  `json:"group_id"`
	Group    *Group `json:"group,omitempty"`
	Subgroup int    `json:"subgroup"`
	EvenWeek bool   `json:"even_week"`
}

// LessonKey is the natural key used to merge lessons on re-import.
type LessonKey struct {
	GroupID  int64
	Weekday  int
	Slot     int
	Subgroup int
	EvenWeek bool
}

// Key returns the merge key of the lesson.
func (l Lesson) Key() LessonKey {
	return LessonKey{
		GroupID:  l.GroupID,
		Weekday:  l.Weekday,
		Slot:     l.Slot,
		Subgroup: l.Subgroup,
		EvenWeek: l.EvenWeek,
	}
}

// TeacherKey normalizes a teacher name for case-insensitive substring matching.
func TeacherKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
