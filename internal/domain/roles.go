// Package domain defines shared domain constants and types.
package domain

// Role separates students, who follow a group timetable, from teachers, who
// follow lessons matched by name.
type Role string

const (
	// RoleStudent resolves lessons by group and subgroup.
	RoleStudent Role = "student"
	// RoleTeacher resolves lessons by a teacher-name substring.
	RoleTeacher Role = "teacher"
)

// Status is the privilege level of a user.
type Status string

const (
	// StatusUser is a regular subscriber.
	StatusUser Status = "user"
	// StatusAdmin may import schedules and run bulk commands.
	StatusAdmin Status = "admin"
)

// AllSubgroups marks lessons shared by the whole group and students that did
// not pick a subgroup.
const AllSubgroups = 0

// Subgroups lists the selectable subgroups.
var Subgroups = []int{1, 2}

// NotifyHours lists the supported daily delivery hours.
var NotifyHours = []int{8, 20}

// DefaultNotifyHour is assigned to new users.
const DefaultNotifyHour = 8

// ValidNotifyHour reports whether hour is one of NotifyHours.
func ValidNotifyHour(hour int) bool {
	for _, h := range NotifyHours {
		if h == hour {
			return true
		}
	}
	return false
}

// ValidSubgroup reports whether subgroup is selectable by a student.
func ValidSubgroup(subgroup int) bool {
	for _, s := range Subgroups {
		if s == subgroup {
			return true
		}
	}
	return false
}
