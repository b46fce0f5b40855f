package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"asu_schedule_bot/internal/domain"
)

func TestToggleReturnsNewState(t *testing.T) {
	hookLogger, hook := logtest.NewNullLogger()
	fake := &fakePreferences{toggled: true}
	svc := NewService(fake, logrus.NewEntry(hookLogger))

	enabled, err := svc.Toggle(context.Background(), 42)
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !enabled || fake.toggleUser != 42 {
		t.Fatalf("expected enabled toggle for user 42, got enabled=%v user=%d", enabled, fake.toggleUser)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["event"] != "notify_toggled" || entry.Data["enabled"] != true {
		t.Fatalf("expected notify_toggled log, got %+v", entry)
	}
}

func TestSetHourValidatesHour(t *testing.T) {
	hookLogger, _ := logtest.NewNullLogger()

	tests := []struct {
		name    string
		hour    int
		wantErr error
	}{
		{"morning", 8, nil},
		{"evening", 20, nil},
		{"midnight", 0, domain.ErrInvalidNotifyHour},
		{"nine", 9, domain.ErrInvalidNotifyHour},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePreferences{}
			svc := NewService(fake, logrus.NewEntry(hookLogger))

			err := svc.SetHour(context.Background(), 7, tt.hour)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if fake.hourCalls != 0 {
					t.Fatalf("expected no store call for rejected hour")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetHour returned error: %v", err)
			}
			if fake.hour != tt.hour {
				t.Fatalf("expected hour %d stored, got %d", tt.hour, fake.hour)
			}
		})
	}
}

func TestSetHourPropagatesUnknownUser(t *testing.T) {
	svc := NewService(&fakePreferences{err: domain.ErrUserNotFound}, nil)

	if err := svc.SetHour(context.Background(), 1, 8); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBulkMutationsRequireConfirmation(t *testing.T) {
	hookLogger, hook := logtest.NewNullLogger()
	fake := &fakePreferences{disabled: 12, deleted: 300}
	svc := NewService(fake, logrus.NewEntry(hookLogger))
	ctx := context.Background()

	if _, err := svc.DisableAll(ctx, nil); !errors.Is(err, domain.ErrUnconfirmed) {
		t.Fatalf("expected ErrUnconfirmed, got %v", err)
	}
	if _, err := svc.DeleteAllLessons(ctx, []string{"yes"}); !errors.Is(err, domain.ErrUnconfirmed) {
		t.Fatalf("expected ErrUnconfirmed, got %v", err)
	}
	if fake.disableCalls != 0 || fake.deleteCalls != 0 {
		t.Fatalf("expected no mutation without confirmation")
	}

	n, err := svc.DisableAll(ctx, []string{"confirm"})
	if err != nil || n != 12 {
		t.Fatalf("expected 12 users disabled, got %d err=%v", n, err)
	}
	n, err = svc.DeleteAllLessons(ctx, []string{"now", " CONFIRM "})
	if err != nil || n != 300 {
		t.Fatalf("expected 300 lessons deleted, got %d err=%v", n, err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["event"] != "lessons_deleted_all" || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected lessons_deleted_all warn log, got %+v", entry)
	}
}

func TestBulkMutationWrapsStoreError(t *testing.T) {
	expected := errors.New("db down")
	svc := NewService(&fakePreferences{err: expected}, nil)

	_, err := svc.DisableAll(context.Background(), []string{ConfirmToken})
	if !errors.Is(err, expected) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestServiceGuards(t *testing.T) {
	var nilSvc *Service
	if _, err := nilSvc.Toggle(context.Background(), 1); err == nil {
		t.Fatalf("expected error for nil service")
	}
	if err := NewService(&fakePreferences{}, nil).SetHour(nil, 1, 8); err == nil {
		t.Fatalf("expected error for nil context")
	}
}

type fakePreferences struct {
	toggled  bool
	disabled int64
	deleted  int64
	err      error

	toggleUser   int64
	hour         int
	hourCalls    int
	disableCalls int
	deleteCalls  int
}

func (f *fakePreferences) ToggleNotify(_ context.Context, userID int64) (bool, error) {
	f.toggleUser = userID
	return f.toggled, f.err
}

func (f *fakePreferences) SetNotifyHour(_ context.Context, _ int64, hour int) error {
	f.hourCalls++
	f.hour = hour
	return f.err
}

func (f *fakePreferences) DisableAllNotify(context.Context) (int64, error) {
	f.disableCalls++
	return f.disabled, f.err
}

func (f *fakePreferences) DeleteAllLessons(context.Context) (int64, error) {
	f.deleteCalls++
	return f.deleted, f.err
}
