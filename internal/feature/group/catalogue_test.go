package group

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"asu_schedule_bot/internal/domain"
)

func TestCatalogueListsGroups(t *testing.T) {
	hookLogger, hook := logtest.NewNullLogger()
	hookLogger.SetLevel(logrus.DebugLevel)

	fake := &fakeGroups{
		faculties: []string{"ИФ", "ЭФ"},
		courses:   []int{1, 2},
		groups:    []domain.Group{{ID: 3, Course: 2, Faculty: "ИФ", Speciality: "ИВТ"}},
	}
	catalogue := NewCatalogue(fake, logrus.NewEntry(hookLogger))
	ctx := context.Background()

	faculties, err := catalogue.Faculties(ctx)
	if err != nil || len(faculties) != 2 {
		t.Fatalf("unexpected faculties %v err=%v", faculties, err)
	}

	courses, err := catalogue.Courses(ctx, " ИФ ")
	if err != nil || len(courses) != 2 || fake.lastFaculty != "ИФ" {
		t.Fatalf("unexpected courses %v err=%v faculty=%q", courses, err, fake.lastFaculty)
	}

	groups, err := catalogue.Groups(ctx, "ИФ", 2)
	if err != nil || len(groups) != 1 || groups[0].Speciality != "ИВТ" {
		t.Fatalf("unexpected groups %+v err=%v", groups, err)
	}
	if fake.lastCourse != 2 {
		t.Fatalf("expected course 2 to be queried, got %d", fake.lastCourse)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["event"] != "groups_listed" || entry.Data["count"] != 1 {
		t.Fatalf("expected groups_listed log, got %+v", entry)
	}
}

func TestCatalogueGroupWrapsNotFound(t *testing.T) {
	catalogue := NewCatalogue(&fakeGroups{getErr: domain.ErrGroupNotFound}, nil)

	if _, err := catalogue.Group(context.Background(), 42); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestCatalogueValidatesInput(t *testing.T) {
	hookLogger, _ := logtest.NewNullLogger()
	catalogue := NewCatalogue(&fakeGroups{}, logrus.NewEntry(hookLogger))

	tests := []struct {
		name      string
		call      func() error
		expectErr string
	}{
		{"empty faculty for courses", func() error { _, err := catalogue.Courses(context.Background(), " "); return err }, "faculty is required"},
		{"empty faculty for groups", func() error { _, err := catalogue.Groups(context.Background(), "", 1); return err }, "faculty is required"},
		{"zero course", func() error { _, err := catalogue.Groups(context.Background(), "ИФ", 0); return err }, "out of range"},
		{"nil context", func() error { _, err := catalogue.Faculties(nil); return err }, "context is required"},
		{"nil catalogue", func() error { var c *Catalogue; _, err := c.Faculties(context.Background()); return err }, "not initialized"},
		{"store error", func() error {
			_, err := NewCatalogue(&fakeGroups{err: errors.New("db down")}, nil).Faculties(context.Background())
			return err
		}, "db down"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
				t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
			}
		})
	}
}

type fakeGroups struct {
	faculties []string
	courses   []int
	groups    []domain.Group
	err       error
	getErr    error

	lastFaculty string
	lastCourse  int
}

func (f *fakeGroups) Faculties(context.Context) ([]string, error) {
	return f.faculties, f.err
}

func (f *fakeGroups) Courses(_ context.Context, faculty string) ([]int, error) {
	f.lastFaculty = faculty
	return f.courses, f.err
}

func (f *fakeGroups) Groups(_ context.Context, faculty string, course int) ([]domain.Group, error) {
	f.lastFaculty = faculty
	f.lastCourse = course
	return f.groups, f.err
}

func (f *fakeGroups) GetGroup(_ context.Context, id int64) (domain.Group, error) {
	if f.getErr != nil {
		return domain.Group{}, f.getErr
	}
	return domain.Group{ID: id}, nil
}
