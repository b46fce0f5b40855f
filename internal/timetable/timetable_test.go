package timetable

import "testing"

func TestStandardTable(t *testing.T) {
	table := Standard()

	r, ok := table.Lookup(1)
	if !ok || r.Start != "09:00" || r.End != "10:35" {
		t.Fatalf("unexpected slot 1: %+v ok=%v", r, ok)
	}
	if _, ok := table.Lookup(6); ok {
		t.Fatalf("slot 6 should not exist")
	}

	slots := table.Slots()
	if len(slots) != 6 || slots[0] != 0 || slots[5] != 5 {
		t.Fatalf("unexpected slots %v", slots)
	}
}

func TestSelect(t *testing.T) {
	if len(Select(false)) != 6 {
		t.Fatalf("expected standard table")
	}
	alt := Select(true)
	if len(alt) != 5 {
		t.Fatalf("expected alternate table with 5 slots, got %d", len(alt))
	}
	if r, _ := alt.Lookup(2); r.End != "10:40" {
		t.Fatalf("unexpected alternate slot 2 end %q", r.End)
	}
}

func TestEnd(t *testing.T) {
	table := Standard()

	h, m, err := table.End(0)
	if err != nil || h != 8 || m != 50 {
		t.Fatalf("expected 8:50, got %d:%d err=%v", h, m, err)
	}
	if _, _, err := table.End(42); err == nil {
		t.Fatalf("expected error for unknown slot")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"7:15", 7, 15, false},
		{"18:05", 18, 5, false},
		{"1805", 0, 0, true},
		{"25:00", 0, 0, true},
		{"ab:cd", 0, 0, true},
	}

	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil || h != tt.h || m != tt.m {
			t.Fatalf("ParseClock(%q) = %d:%d err=%v", tt.in, h, m, err)
		}
	}
}
