package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/parity"
	"asu_schedule_bot/internal/render"
)

// Callback data prefixes. Registration state travels inside the callback data
// so no conversation state is kept between updates.
const (
	cbFaculty    = "rf"
	cbCourse     = "rc"
	cbGroup      = "rg"
	cbSubgroup   = "rs"
	cbTeacher    = "rt"
	cbCancel     = "rx"
	cbDay        = "day"
	cbNotify     = "notify"
	notifyToggle = "toggle"

	// Telegram truncates button labels; long faculty names are cut here.
	maxButtonLabel = 32
)

func mainKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: btnToday}, {Text: btnTomorrow}},
			{{Text: btnPickDay}, {Text: btnInfo}},
			{{Text: btnNotify}, {Text: btnChangeGroup}},
		},
		ResizeKeyboard: true,
	}
}

func button(text string, data ...interface{}) models.InlineKeyboardButton {
	parts := make([]string, len(data))
	for i, d := range data {
		parts[i] = fmt.Sprint(d)
	}
	return models.InlineKeyboardButton{Text: text, CallbackData: strings.Join(parts, ":")}
}

func inline(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func cancelRow() []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{button("Отмена", cbCancel)}
}

func facultyKeyboard(faculties []string) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(faculties)+2)
	for i, faculty := range faculties {
		rows = append(rows, []models.InlineKeyboardButton{button(truncate(faculty), cbFaculty, i)})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{button("Преподаватель", cbTeacher)},
		cancelRow(),
	)
	return inline(rows...)
}

func courseKeyboard(facultyIdx int, courses []int) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, len(courses))
	for _, course := range courses {
		row = append(row, button(fmt.Sprintf("%d курс", course), cbCourse, facultyIdx, course))
	}
	return inline(row, cancelRow())
}

func groupKeyboard(groups []domain.Group) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(groups)+1)
	for _, g := range groups {
		rows = append(rows, []models.InlineKeyboardButton{button(truncate(g.Speciality), cbGroup, g.ID)})
	}
	return inline(append(rows, cancelRow())...)
}

func subgroupKeyboard(groupID int64) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, len(domain.Subgroups))
	for _, s := range domain.Subgroups {
		row = append(row, button(fmt.Sprintf("%d Подгруппа", s), cbSubgroup, groupID, s))
	}
	return inline(row, cancelRow())
}

func dayKeyboard(days []int) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(days))
	for _, day := range days {
		rows = append(rows, []models.InlineKeyboardButton{
			button(fmt.Sprintf("%s (%s)", render.DayName(day), parity.Label(false)), cbDay, day, 0),
			button(fmt.Sprintf("%s (%s)", render.DayName(day), parity.Label(true)), cbDay, day, 1),
		})
	}
	return inline(rows...)
}

func notifyKeyboard() *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(domain.NotifyHours)+1)
	for _, hour := range domain.NotifyHours {
		rows = append(rows, []models.InlineKeyboardButton{button(fmt.Sprintf("%d:00", hour), cbNotify, hour)})
	}
	rows = append(rows, []models.InlineKeyboardButton{button("Включить/Выключить", cbNotify, notifyToggle)})
	return inline(rows...)
}

func truncate(label string) string {
	runes := []rune(label)
	if len(runes) <= maxButtonLabel {
		return label
	}
	return string(runes[:maxButtonLabel])
}

// callback is parsed callback data: a prefix and integer or token arguments.
type callback struct {
	kind string
	args []string
}

func parseCallback(data string) callback {
	parts := strings.Split(strings.TrimSpace(data), ":")
	return callback{kind: parts[0], args: parts[1:]}
}

func (c callback) intArg(i int) (int, error) {
	n, err := c.idArg(i)
	return int(n), err
}

func (c callback) idArg(i int) (int64, error) {
	if i >= len(c.args) {
		return 0, fmt.Errorf("callback %q: missing argument %d", c.kind, i)
	}
	n, err := strconv.ParseInt(c.args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("callback %q: %w", c.kind, err)
	}
	return n, nil
}
