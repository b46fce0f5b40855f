// Package importer loads lesson schedules from xlsx workbooks uploaded by
// administrators.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/store"
)

// MaxWorkbookSize bounds downloaded workbooks.
const MaxWorkbookSize = 20 << 20

type lessonStore interface {
	ImportLessons(ctx context.Context, lessons []domain.Lesson, replace bool) (store.ImportResult, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Importer parses workbooks and stores their lessons in one transaction.
type Importer struct {
	lessons lessonStore
	client  httpDoer
	logger  *logrus.Entry
}

// New constructs an Importer. A nil client falls back to http.DefaultClient.
func New(lessons lessonStore, client httpDoer, logger *logrus.Entry) *Importer {
	if logger == nil {
		logger = logging.Logger()
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Importer{
		lessons: lessons,
		client:  client,
		logger:  logger,
	}
}

// IsWorkbook reports whether a file name looks like an xlsx workbook.
func IsWorkbook(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".xlsx")
}

// ReplaceRequested reports whether an upload caption asks to drop existing
// lessons before importing.
func ReplaceRequested(caption string) bool {
	for _, word := range strings.Fields(strings.ToLower(caption)) {
		if word == "replace" || word == "заменить" {
			return true
		}
	}
	return false
}

// Import parses the workbook from r and stores its lessons.
func (i *Importer) Import(ctx context.Context, r io.Reader, replace bool) (store.ImportResult, error) {
	if i == nil || i.lessons == nil {
		return store.ImportResult{}, errors.New("importer is not initialized")
	}
	if ctx == nil {
		return store.ImportResult{}, errors.New("context is required")
	}

	lessons, err := Parse(r)
	if err != nil {
		return store.ImportResult{}, err
	}
	if len(lessons) == 0 {
		return store.ImportResult{}, errors.New("workbook has no lessons")
	}

	result, err := i.lessons.ImportLessons(ctx, lessons, replace)
	if err != nil {
		return store.ImportResult{}, fmt.Errorf("import lessons: %w", err)
	}

	i.logger.WithFields(logging.Fields{
		"event":          "schedule_imported",
		"lessons":        result.Lessons,
		"groups_created": result.GroupsCreated,
		"removed":        result.Removed,
		"replace":        replace,
	}).Info("imported schedule workbook")

	return result, nil
}

// ImportURL downloads a workbook and imports it.
func (i *Importer) ImportURL(ctx context.Context, url string, replace bool) (store.ImportResult, error) {
	if i == nil || i.client == nil {
		return store.ImportResult{}, errors.New("importer is not initialized")
	}
	if ctx == nil {
		return store.ImportResult{}, errors.New("context is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return store.ImportResult{}, fmt.Errorf("build download request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return store.ImportResult{}, fmt.Errorf("download workbook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return store.ImportResult{}, fmt.Errorf("download workbook: unexpected status %d", resp.StatusCode)
	}

	return i.Import(ctx, io.LimitReader(resp.Body, MaxWorkbookSize), replace)
}
