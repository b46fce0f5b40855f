// Package render turns lessons and users into Telegram HTML messages.
package render

import (
	"fmt"
	"html"
	"strings"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/parity"
	"asu_schedule_bot/internal/store"
	"asu_schedule_bot/internal/timetable"
)

const (
	// NoLessons is shown under the header of a day without lessons.
	NoLessons = "Расписание не найдено."

	separator   = "━━━━━━━━━━━━━━━━━━\n"
	notSet      = "не указано"
	unknownTime = "—"
	unknownGrp  = "??"

	// UsersPerMessage bounds how many profiles UserList packs into one message.
	UsersPerMessage = 15
	userSeparator   = "\n------------\n"
)

var dayNames = [7]string{
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
	"Воскресенье",
}

// DayName returns the Russian name of a Monday-based weekday.
func DayName(weekday int) string {
	if weekday < 0 || weekday >= len(dayNames) {
		return fmt.Sprintf("день %d", weekday)
	}
	return dayNames[weekday]
}

// viewPolicy renders the role-dependent line of a lesson block.
type viewPolicy func(l domain.Lesson) string

// Renderer formats schedules using one lesson time table.
type Renderer struct {
	times    timetable.Table
	policies map[domain.Role]viewPolicy
}

// New returns a Renderer for the given time table.
func New(times timetable.Table) *Renderer {
	return &Renderer{
		times: times,
		policies: map[domain.Role]viewPolicy{
			domain.RoleTeacher: groupLine,
			domain.RoleStudent: teacherLine,
		},
	}
}

func groupLine(l domain.Lesson) string {
	name := unknownGrp
	if l.Group != nil {
		name = l.Group.ShortName()
	}
	return "Группа: " + html.EscapeString(name)
}

func teacherLine(l domain.Lesson) string {
	return "Преподаватель: " + orNotSet(l.Teacher)
}

// Day renders the schedule of one weekday. An empty list renders the header
// followed by NoLessons.
func (r *Renderer) Day(user domain.User, weekday int, even bool, lessons []domain.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Расписание на %s (%s):</b>\n\n", DayName(weekday), parity.Label(even))

	if len(lessons) == 0 {
		b.WriteString(NoLessons)
		return b.String()
	}

	for _, l := range lessons {
		b.WriteString(r.Lesson(user, l))
		b.WriteString(separator)
	}
	return b.String()
}

// NextLesson renders the reminder sent at the end of the previous slot. Lessons
// sharing the slot are separated like in Day.
func (r *Renderer) NextLesson(user domain.User, lessons []domain.Lesson) string {
	var b strings.Builder
	b.WriteString("<b>Следующая пара:</b>\n\n")
	for i, l := range lessons {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(r.Lesson(user, l))
	}
	return b.String()
}

// Lesson renders one lesson block as seen by user.
func (r *Renderer) Lesson(user domain.User, l domain.Lesson) string {
	start, end := unknownTime, unknownTime
	if rng, ok := r.times.Lookup(l.Slot); ok {
		start, end = rng.Start, rng.End
	}

	policy, ok := r.policies[user.Role]
	if !ok {
		policy = teacherLine
	}

	details := []string{
		"Предмет: " + orNotSet(l.Subject),
		"Формат: " + orNotSet(l.Format),
		"Кабинет: " + orNotSet(l.Room),
		policy(l),
	}

	return fmt.Sprintf("🕒 %d пара (%s - %s)\n├%s\n", l.Slot, start, end, strings.Join(details, "\n├"))
}

// Profile renders the user card shown by /info and /users_list.
func (r *Renderer) Profile(u domain.User) string {
	name := html.EscapeString(u.Name)

	notify, hour := "Выключена", "-"
	if u.DailyNotify {
		notify, hour = "Включена", fmt.Sprintf("%d:00", u.NotifyHour)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 Имя пользователя: %s\n", name)

	switch {
	case u.IsTeacher():
		teacher := "Не указано"
		if strings.TrimSpace(u.TeacherName) != "" {
			teacher = html.EscapeString(u.TeacherName)
		}
		fmt.Fprintf(&b, "🧑‍🏫 Преподаватель: %s\n", teacher)
	case u.Group != nil:
		subgroup := "Не указана"
		if u.Subgroup != domain.AllSubgroups {
			subgroup = fmt.Sprint(u.Subgroup)
		}
		fmt.Fprintf(&b, "🏛️ Факультет: %s\n", html.EscapeString(u.Group.Faculty))
		fmt.Fprintf(&b, "🎓 Группа: %s\n", html.EscapeString(u.Group.ShortName()))
		fmt.Fprintf(&b, "🔢 Подгруппа: %s\n", subgroup)
	default:
		b.WriteString("⚠️ Группа не выбрана. Завершите регистрацию (/start).")
		return b.String()
	}

	fmt.Fprintf(&b, "📧 Ежедневная рассылка: %s\n", notify)
	fmt.Fprintf(&b, "⏰ Время рассылки: %s\n", hour)
	fmt.Fprintf(&b, "👑 Статус: %s", statusName(u))
	return b.String()
}

func statusName(u domain.User) string {
	switch {
	case u.IsAdmin():
		return "Администратор"
	case u.IsTeacher():
		return "Преподаватель"
	default:
		return "Пользователь"
	}
}

// UserList splits profiles into messages of at most UsersPerMessage users.
func (r *Renderer) UserList(users []domain.User) []string {
	var messages []string
	for start := 0; start < len(users); start += UsersPerMessage {
		end := start + UsersPerMessage
		if end > len(users) {
			end = len(users)
		}

		cards := make([]string, 0, end-start)
		for _, u := range users[start:end] {
			cards = append(cards, r.Profile(u))
		}
		messages = append(messages, strings.Join(cards, userSeparator))
	}
	return messages
}

// Stats renders the /user_stats report.
func Stats(s store.Stats) string {
	return fmt.Sprintf("<b>Статистика пользователей:</b>\n\n"+
		"Всего пользователей: %d\n"+
		"Преподавателей: %d\n"+
		"Администраторов: %d\n"+
		"Включена ежедневная рассылка: %d\n"+
		"Групп: %d\n"+
		"Занятий в расписании: %d",
		s.Users, s.Teachers, s.Admins, s.NotifyEnabled, s.Groups, s.Lessons)
}

func orNotSet(value string) string {
	if strings.TrimSpace(value) == "" {
		return notSet
	}
	return html.EscapeString(value)
}
