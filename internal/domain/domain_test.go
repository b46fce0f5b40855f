package domain

import (
	"errors"
	"testing"
)

func TestGroupNames(t *testing.T) {
	g := Group{Course: 2, Faculty: "ИФ", Speciality: "ИВТ"}

	if g.Name() != "2_ИФ_ИВТ" {
		t.Fatalf("unexpected name %q", g.Name())
	}
	if g.ShortName() != "2_ИВТ" {
		t.Fatalf("unexpected short name %q", g.ShortName())
	}
}

func TestCheckRegistered(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"student with group", User{Role: RoleStudent, GroupID: 3}, false},
		{"student without group", User{Role: RoleStudent}, true},
		{"teacher with key", User{Role: RoleTeacher, TeacherName: " Иванов "}, false},
		{"teacher with blank key", User{Role: RoleTeacher, TeacherName: "  "}, true},
		{"unknown role", User{Role: "guest", GroupID: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.CheckRegistered()
			if tt.wantErr && !errors.Is(err, ErrNotRegistered) {
				t.Fatalf("expected ErrNotRegistered, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTeacherKeyLowercasesCyrillic(t *testing.T) {
	if got := TeacherKey("  ИВАНОВ И.И. "); got != "иванов и.и." {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestValidNotifyHour(t *testing.T) {
	for _, hour := range []int{8, 20} {
		if !ValidNotifyHour(hour) {
			t.Fatalf("expected %d to be valid", hour)
		}
	}
	for _, hour := range []int{0, 9, 21, -8} {
		if ValidNotifyHour(hour) {
			t.Fatalf("expected %d to be rejected", hour)
		}
	}
}

func TestLessonKeyIgnoresPayload(t *testing.T) {
	a := Lesson{GroupID: 1, Weekday: 2, Slot: 3, Subgroup: 1, EvenWeek: true, Subject: "Физика"}
	b := a
	b.Subject = "Химия"
	b.Room = "101"

	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %+v and %+v", a.Key(), b.Key())
	}
}
