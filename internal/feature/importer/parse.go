package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"asu_schedule_bot/internal/domain"
)

// Column order of every schedule sheet. The first row of a sheet is a header.
const (
	colCourse = iota
	colSpeciality
	colSubgroup
	colDay
	colSlot
	colSubject
	colTeacher
	colRoom
	colFormat
	colEvenWeek
	colFaculty
	columnCount
)

var weekdays = map[string]int{
	"пн": 0,
	"вт": 1,
	"ср": 2,
	"чт": 3,
	"пт": 4,
	"сб": 5,
	"вс": 6,
}

// RowError locates an invalid spreadsheet row.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Parse reads lessons from every sheet of an xlsx workbook. Blank rows are
// skipped; the first invalid row aborts the parse.
func Parse(r io.Reader) ([]domain.Lesson, error) {
	if r == nil {
		return nil, errors.New("workbook reader is required")
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var lessons []domain.Lesson
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		if len(rows) == 0 {
			continue
		}
		if len(rows[0]) < columnCount {
			return nil, &RowError{Sheet: sheet, Row: 1, Err: fmt.Errorf("expected %d header columns, got %d", columnCount, len(rows[0]))}
		}

		for i := 1; i < len(rows); i++ {
			if blank(rows[i]) {
				continue
			}
			lesson, err := parseRow(rows[i])
			if err != nil {
				return nil, &RowError{Sheet: sheet, Row: i + 1, Err: err}
			}
			lessons = append(lessons, lesson)
		}
	}

	return lessons, nil
}

func parseRow(row []string) (domain.Lesson, error) {
	cell := func(col int) string {
		if col < len(row) {
			return strings.TrimSpace(row[col])
		}
		return ""
	}

	course, err := parseInt(cell(colCourse))
	if err != nil || course <= 0 {
		return domain.Lesson{}, fmt.Errorf("invalid course %q", cell(colCourse))
	}
	speciality := cell(colSpeciality)
	if speciality == "" {
		return domain.Lesson{}, errors.New("speciality is required")
	}
	faculty := cell(colFaculty)
	if faculty == "" {
		return domain.Lesson{}, errors.New("faculty is required")
	}

	subgroup := domain.AllSubgroups
	if raw := cell(colSubgroup); raw != "" {
		subgroup, err = parseInt(raw)
		if err != nil || (subgroup != domain.AllSubgroups && !domain.ValidSubgroup(subgroup)) {
			return domain.Lesson{}, fmt.Errorf("invalid subgroup %q", raw)
		}
	}

	day := strings.TrimSuffix(strings.ToLower(cell(colDay)), ".")
	weekday, ok := weekdays[day]
	if !ok {
		return domain.Lesson{}, fmt.Errorf("invalid day %q", cell(colDay))
	}

	slot, err := parseInt(cell(colSlot))
	if err != nil || slot < 0 {
		return domain.Lesson{}, fmt.Errorf("invalid slot %q", cell(colSlot))
	}

	subject := cell(colSubject)
	if subject == "" {
		return domain.Lesson{}, errors.New("subject is required")
	}

	even, err := parseInt(cell(colEvenWeek))
	if err != nil || (even != 0 && even != 1) {
		return domain.Lesson{}, fmt.Errorf("invalid even week flag %q", cell(colEvenWeek))
	}

	return domain.Lesson{
		Weekday:  weekday,
		Slot:     slot,
		Subject:  subject,
		Teacher:  cell(colTeacher),
		Room:     cell(colRoom),
		Format:   cell(colFormat),
		Group:    &domain.Group{Course: course, Faculty: faculty, Speciality: speciality},
		Subgroup: subgroup,
		EvenWeek: even == 1,
	}, nil
}

// parseInt accepts integers written as "2" or "2.0".
func parseInt(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(f), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
