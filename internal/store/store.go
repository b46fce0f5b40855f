// Package store persists users, groups and lessons behind one interface with
// SQL (SQLite, PostgreSQL) and MongoDB backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/config"
	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
)

// LessonFilter selects lessons of one weekday and week parity, optionally
// narrowed to one slot.
type LessonFilter struct {
	Weekday  int
	EvenWeek bool
	Slot     *int
}

// SubscriberFilter selects opted-in users. A nil NotifyHour matches every hour.
type SubscriberFilter struct {
	NotifyHour *int
}

// ImportResult summarizes one spreadsheet import.
type ImportResult struct {
	Lessons       int
	GroupsCreated int
	Removed       int64
}

// Store is the persistence contract shared by all backends. Each call is an
// independent unit of work against a pooled connection.
type Store interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	Subscribers(ctx context.Context, filter SubscriberFilter) ([]domain.User, error)
	SaveStudent(ctx context.Context, profile domain.Profile, groupID int64, subgroup int) (bool, error)
	SaveTeacher(ctx context.Context, profile domain.Profile, teacherName string) (bool, error)
	EnsureAdmin(ctx context.Context, userID int64) error
	ToggleNotify(ctx context.Context, userID int64) (bool, error)
	SetNotifyHour(ctx context.Context, userID int64, hour int) error
	DisableAllNotify(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (Stats, error)

	Faculties(ctx context.Context) ([]string, error)
	Courses(ctx context.Context, faculty string) ([]int, error)
	Groups(ctx context.Context, faculty string, course int) ([]domain.Group, error)
	GetGroup(ctx context.Context, id int64) (domain.Group, error)

	LessonsByGroup(ctx context.Context, groupID int64, subgroup int, filter LessonFilter) ([]domain.Lesson, error)
	LessonsByTeacher(ctx context.Context, teacherKey string, filter LessonFilter) ([]domain.Lesson, error)
	LessonDays(ctx context.Context) ([]int, error)
	ImportLessons(ctx context.Context, lessons []domain.Lesson, replace bool) (ImportResult, error)
	DeleteAllLessons(ctx context.Context) (int64, error)

	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.StoreDriver and ensures its schema.
func Open(ctx context.Context, cfg config.Config, logger *logrus.Entry) (Store, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	var (
		s   Store
		err error
	)

	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err = NewMongoStore(ctx, cfg)
	case config.DriverPostgres:
		s, err = OpenSQL(ctx, DialectPostgres, cfg.DatabaseURL)
	case config.DriverSQLite, "":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && dir != "" {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", mkErr)
			}
		}
		s, err = OpenSQL(ctx, DialectSQLite, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.WithFields(logging.Fields{
		"event":  "store_ready",
		"driver": cfg.StoreDriver,
	}).Info("store connected and schema ensured")

	return s, nil
}
