// Package group exposes the faculty, course and speciality catalogue students
// pick their group from.
package group

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
)

type groupStore interface {
	Faculties(ctx context.Context) ([]string, error)
	Courses(ctx context.Context, faculty string) ([]int, error)
	Groups(ctx context.Context, faculty string, course int) ([]domain.Group, error)
	GetGroup(ctx context.Context, id int64) (domain.Group, error)
}

// Catalogue lists the groups known from imported schedules.
type Catalogue struct {
	groups groupStore
	logger *logrus.Entry
}

// NewCatalogue constructs a Catalogue for the provided store.
func NewCatalogue(groups groupStore, logger *logrus.Entry) *Catalogue {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Catalogue{
		groups: groups,
		logger: logger,
	}
}

// Faculties lists faculties that have at least one group.
func (c *Catalogue) Faculties(ctx context.Context) ([]string, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}

	faculties, err := c.groups.Faculties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// Courses lists the courses of a faculty.
func (c *Catalogue) Courses(ctx context.Context, faculty string) ([]int, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	faculty = strings.TrimSpace(faculty)
	if faculty == "" {
		return nil, errors.New("faculty is required")
	}

	courses, err := c.groups.Courses(ctx, faculty)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Groups lists the groups of one faculty and course.
func (c *Catalogue) Groups(ctx context.Context, faculty string, course int) ([]domain.Group, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	faculty = strings.TrimSpace(faculty)
	if faculty == "" {
		return nil, errors.New("faculty is required")
	}
	if course <= 0 {
		return nil, fmt.Errorf("course %d out of range", course)
	}

	groups, err := c.groups.Groups(ctx, faculty, course)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	c.logger.WithFields(logging.Fields{
		"event":   "groups_listed",
		"faculty": faculty,
		"course":  course,
		"count":   len(groups),
	}).Debug("listed groups")

	return groups, nil
}

// Group loads one group by id.
func (c *Catalogue) Group(ctx context.Context, id int64) (domain.Group, error) {
	if err := c.check(ctx); err != nil {
		return domain.Group{}, err
	}

	g, err := c.groups.GetGroup(ctx, id)
	if err != nil {
		return domain.Group{}, fmt.Errorf("get group %d: %w", id, err)
	}
	return g, nil
}

func (c *Catalogue) check(ctx context.Context) error {
	if c == nil || c.groups == nil {
		return errors.New("group catalogue is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	return nil
}
