package render

import (
	"strings"
	"testing"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/store"
	"asu_schedule_bot/internal/timetable"
)

var (
	studentViewer = domain.User{ID: 1, Role: domain.RoleStudent, GroupID: 3}
	teacherViewer = domain.User{ID: 2, Role: domain.RoleTeacher, TeacherName: "Иванов"}
	ivt           = &domain.Group{ID: 3, Course: 2, Faculty: "ИФ", Speciality: "ИВТ"}
)

func TestDayEmptyRendersNotice(t *testing.T) {
	r := New(timetable.Standard())

	got := r.Day(studentViewer, 2, true, nil)
	want := "<b>Расписание на Среда (красная):</b>\n\n" + NoLessons
	if got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestDayRendersLessonsInOrderWithSeparators(t *testing.T) {
	r := New(timetable.Standard())

	got := r.Day(studentViewer, 0, false, []domain.Lesson{
		{Slot: 1, Subject: "Матанализ", Teacher: "Иванов И.И.", Room: "101", Format: "Лекция", Group: ivt},
		{Slot: 2, Subject: "Сети"},
	})

	want := "<b>Расписание на Понедельник (черная):</b>\n\n" +
		"🕒 1 пара (09:00 - 10:35)\n" +
		"├Предмет: Матанализ\n" +
		"├Формат: Лекция\n" +
		"├Кабинет: 101\n" +
		"├Преподаватель: Иванов И.И.\n" +
		separator +
		"🕒 2 пара (10:45 - 12:20)\n" +
		"├Предмет: Сети\n" +
		"├Формат: не указано\n" +
		"├Кабинет: не указано\n" +
		"├Преподаватель: не указано\n" +
		separator

	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestLessonVisibilityByRole(t *testing.T) {
	r := New(timetable.Standard())
	lesson := domain.Lesson{Slot: 3, Subject: "Алгебра", Teacher: "Иванов И.И.", Group: ivt}

	tests := []struct {
		name   string
		viewer domain.User
		lesson domain.Lesson
		want   string
		hidden string
	}{
		{"student sees teacher", studentViewer, lesson, "├Преподаватель: Иванов И.И.\n", "Группа:"},
		{"teacher sees group", teacherViewer, lesson, "├Группа: 2_ИВТ\n", "Преподаватель:"},
		{"teacher with unknown group", teacherViewer, domain.Lesson{Slot: 3, Subject: "x"}, "├Группа: ??\n", "Преподаватель:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Lesson(tt.viewer, tt.lesson)
			if !strings.HasSuffix(got, tt.want) {
				t.Fatalf("expected suffix %q, got %q", tt.want, got)
			}
			if strings.Contains(got, tt.hidden) {
				t.Fatalf("expected %q to be hidden, got %q", tt.hidden, got)
			}
		})
	}
}

func TestLessonUnknownSlotUsesPlaceholder(t *testing.T) {
	r := New(timetable.Alternate())

	got := r.Lesson(studentViewer, domain.Lesson{Slot: 5, Subject: "Физкультура"})
	if !strings.HasPrefix(got, "🕒 5 пара (— - —)\n") {
		t.Fatalf("expected placeholder times, got %q", got)
	}
}

func TestLessonEscapesHTML(t *testing.T) {
	r := New(timetable.Standard())

	got := r.Lesson(studentViewer, domain.Lesson{Slot: 1, Subject: "<script>", Teacher: "A & B"})
	if strings.Contains(got, "<script>") || !strings.Contains(got, "&lt;script&gt;") || !strings.Contains(got, "A &amp; B") {
		t.Fatalf("expected escaped output, got %q", got)
	}
}

func TestNextLesson(t *testing.T) {
	r := New(timetable.Standard())

	got := r.NextLesson(teacherViewer, []domain.Lesson{{Slot: 0, Subject: "Химия", Group: ivt}})
	if !strings.HasPrefix(got, "<b>Следующая пара:</b>\n\n🕒 0 пара (7:15 - 8:50)\n") {
		t.Fatalf("unexpected output %q", got)
	}
	if strings.Contains(got, separator) {
		t.Fatalf("single lesson must not carry a separator, got %q", got)
	}

	two := r.NextLesson(teacherViewer, []domain.Lesson{
		{Slot: 2, Subject: "Химия", Group: ivt},
		{Slot: 2, Subject: "Химия", Group: &domain.Group{Course: 1, Speciality: "ПИ"}},
	})
	if strings.Count(two, separator) != 1 || !strings.Contains(two, "├Группа: 1_ПИ") {
		t.Fatalf("expected both groups in one reminder, got %q", two)
	}
}

func TestProfile(t *testing.T) {
	r := New(timetable.Standard())

	tests := []struct {
		name string
		user domain.User
		want string
	}{
		{
			name: "student with subgroup",
			user: domain.User{Name: "Маша", Role: domain.RoleStudent, GroupID: 3, Group: ivt, Subgroup: 2, DailyNotify: true, NotifyHour: 20},
			want: "👤 Имя пользователя: Маша\n" +
				"🏛️ Факультет: ИФ\n" +
				"🎓 Группа: 2_ИВТ\n" +
				"🔢 Подгруппа: 2\n" +
				"📧 Ежедневная рассылка: Включена\n" +
				"⏰ Время рассылки: 20:00\n" +
				"👑 Статус: Пользователь",
		},
		{
			name: "student without subgroup",
			user: domain.User{Name: "Петя", Role: domain.RoleStudent, GroupID: 3, Group: ivt, NotifyHour: 8},
			want: "👤 Имя пользователя: Петя\n" +
				"🏛️ Факультет: ИФ\n" +
				"🎓 Группа: 2_ИВТ\n" +
				"🔢 Подгруппа: Не указана\n" +
				"📧 Ежедневная рассылка: Выключена\n" +
				"⏰ Время рассылки: -\n" +
				"👑 Статус: Пользователь",
		},
		{
			name: "admin teacher",
			user: domain.User{Name: "<b>", Role: domain.RoleTeacher, Status: domain.StatusAdmin, TeacherName: "Иванов"},
			want: "👤 Имя пользователя: &lt;b&gt;\n" +
				"🧑‍🏫 Преподаватель: Иванов\n" +
				"📧 Ежедневная рассылка: Выключена\n" +
				"⏰ Время рассылки: -\n" +
				"👑 Статус: Администратор",
		},
		{
			name: "unregistered",
			user: domain.User{Name: "Гость", Role: domain.RoleStudent},
			want: "👤 Имя пользователя: Гость\n⚠️ Группа не выбрана. Завершите регистрацию (/start).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Profile(tt.user); got != tt.want {
				t.Fatalf("unexpected profile:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestUserListChunks(t *testing.T) {
	r := New(timetable.Standard())

	users := make([]domain.User, UsersPerMessage+2)
	for i := range users {
		users[i] = domain.User{ID: int64(i + 1), Name: "u"}
	}

	messages := r.UserList(users)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if got := strings.Count(messages[0], userSeparator); got != UsersPerMessage-1 {
		t.Fatalf("expected %d separators in first chunk, got %d", UsersPerMessage-1, got)
	}
	if got := strings.Count(messages[1], userSeparator); got != 1 {
		t.Fatalf("expected 1 separator in second chunk, got %d", got)
	}
	if r.UserList(nil) != nil {
		t.Fatalf("expected no messages for no users")
	}
}

func TestStats(t *testing.T) {
	got := Stats(store.Stats{Users: 10, Teachers: 2, Admins: 1, NotifyEnabled: 4, Groups: 3, Lessons: 50})

	for _, want := range []string{"Всего пользователей: 10", "Преподавателей: 2", "Включена ежедневная рассылка: 4", "Занятий в расписании: 50"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestDayName(t *testing.T) {
	if DayName(6) != "Воскресенье" || DayName(0) != "Понедельник" {
		t.Fatalf("unexpected day names")
	}
	if DayName(9) == "" {
		t.Fatalf("expected fallback name for out-of-range weekday")
	}
}
