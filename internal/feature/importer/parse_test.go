package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"asu_schedule_bot/internal/domain"
)

var header = []interface{}{"Курс", "Специальность", "Подгруппа", "День", "Пара", "Предмет", "Преподаватель", "Кабинет", "Тип", "Четная", "Факультет"}

func TestParseReadsEverySheet(t *testing.T) {
	data := workbook(t,
		sheet{name: "Sheet1", rows: [][]interface{}{
			header,
			{2, "ИВТ", "", "пн", 1, "Физика", "Иванов И.И.", 101, "лекция", 0, "ИФ"},
			{},
			{2, "ИВТ", 1, "Ср.", "2.0", "Химия", "", "", "", "1", "ИФ"},
		}},
		sheet{name: "Лист2", rows: [][]interface{}{
			header,
			{1, "ЭК", 2, "сб", 0, "История", "Петров", "3а", "практика", 1, "ЭФ"},
		}},
	)

	lessons, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(lessons))
	}

	first := lessons[0]
	if first.Weekday != 0 || first.Slot != 1 || first.Subgroup != domain.AllSubgroups || first.EvenWeek {
		t.Fatalf("unexpected first lesson %+v", first)
	}
	if first.Room != "101" || first.Teacher != "Иванов И.И." || first.Format != "лекция" {
		t.Fatalf("unexpected optional fields %+v", first)
	}
	if first.Group == nil || first.Group.Name() != "2_ИФ_ИВТ" {
		t.Fatalf("unexpected group %+v", first.Group)
	}

	second := lessons[1]
	if second.Weekday != 2 || second.Slot != 2 || second.Subgroup != 1 || !second.EvenWeek || second.Teacher != "" {
		t.Fatalf("unexpected second lesson %+v", second)
	}

	third := lessons[2]
	if third.Weekday != 5 || third.Group.Faculty != "ЭФ" || third.Room != "3а" {
		t.Fatalf("unexpected third lesson %+v", third)
	}
}

func TestParseReportsSheetAndRow(t *testing.T) {
	tests := []struct {
		name      string
		row       []interface{}
		expectErr string
	}{
		{"unknown day", []interface{}{2, "ИВТ", "", "xx", 1, "Физика", "", "", "", 0, "ИФ"}, `invalid day "xx"`},
		{"fractional slot", []interface{}{2, "ИВТ", "", "пн", 1.5, "Физика", "", "", "", 0, "ИФ"}, "invalid slot"},
		{"missing subject", []interface{}{2, "ИВТ", "", "пн", 1, "", "", "", "", 0, "ИФ"}, "subject is required"},
		{"bad subgroup", []interface{}{2, "ИВТ", 3, "пн", 1, "Физика", "", "", "", 0, "ИФ"}, "invalid subgroup"},
		{"bad parity", []interface{}{2, "ИВТ", "", "пн", 1, "Физика", "", "", "", 2, "ИФ"}, "invalid even week flag"},
		{"missing faculty", []interface{}{2, "ИВТ", "", "пн", 1, "Физика", "", "", "", 0}, "faculty is required"},
		{"zero course", []interface{}{0, "ИВТ", "", "пн", 1, "Физика", "", "", "", 0, "ИФ"}, "invalid course"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			data := workbook(t, sheet{name: "Sheet1", rows: [][]interface{}{
				header,
				{1, "ИВТ", "", "вт", 1, "Физика", "", "", "", 0, "ИФ"},
				tt.row,
			}})

			_, err := Parse(bytes.NewReader(data))
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("expected RowError, got %v", err)
			}
			if rowErr.Sheet != "Sheet1" || rowErr.Row != 3 {
				t.Fatalf("expected Sheet1 row 3, got %q row %d", rowErr.Sheet, rowErr.Row)
			}
			if !strings.Contains(err.Error(), tt.expectErr) {
				t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestParseRejectsNarrowHeader(t *testing.T) {
	data := workbook(t, sheet{name: "Sheet1", rows: [][]interface{}{{"Курс", "Специальность"}}})

	if _, err := Parse(bytes.NewReader(data)); err == nil || !strings.Contains(err.Error(), "header columns") {
		t.Fatalf("expected header error, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a workbook")); err == nil {
		t.Fatalf("expected error for invalid workbook")
	}
	if _, err := Parse(nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"3.0", 3, false},
		{"3,0", 3, false},
		{"3.5", 0, true},
		{"", 0, true},
		{"три", 0, true},
	}

	for _, tt := range tests {
		got, err := parseInt(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parseInt(%q) = %d, %v", tt.raw, got, err)
		}
	}
}

type sheet struct {
	name string
	rows [][]interface{}
}

func workbook(t *testing.T, sheets ...sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for _, s := range sheets {
		if s.name != "Sheet1" {
			if _, err := f.NewSheet(s.name); err != nil {
				t.Fatalf("create sheet %q: %v", s.name, err)
			}
		}
		for i, row := range s.rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				t.Fatalf("write row %d: %v", i+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
