// Package user provides helpers for user registration and profile lookups.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
)

type userStore interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	SaveStudent(ctx context.Context, profile domain.Profile, groupID int64, subgroup int) (bool, error)
	SaveTeacher(ctx context.Context, profile domain.Profile, teacherName string) (bool, error)
}

// Registrar stores the role a user picked during registration. Registering
// again overwrites the previous role and keeps notification preferences.
type Registrar struct {
	users  userStore
	logger *logrus.Entry
}

// NewRegistrar constructs a Registrar for the provided user store.
func NewRegistrar(users userStore, logger *logrus.Entry) *Registrar {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Registrar{
		users:  users,
		logger: logger,
	}
}

// RegisterStudent binds the user to a group and subgroup. It reports whether
// a new record was created.
func (r *Registrar) RegisterStudent(ctx context.Context, profile domain.Profile, groupID int64, subgroup int) (bool, error) {
	if err := r.check(ctx, profile); err != nil {
		return false, err
	}
	if groupID <= 0 {
		return false, errors.New("group id is required")
	}
	if !domain.ValidSubgroup(subgroup) {
		return false, fmt.Errorf("subgroup %d out of range", subgroup)
	}

	created, err := r.users.SaveStudent(ctx, profile, groupID, subgroup)
	if err != nil {
		return false, fmt.Errorf("register student: %w", err)
	}

	r.logRegistration(profile.ID, domain.RoleStudent, created).
		WithFields(logging.Fields{"group_id": groupID, "subgroup": subgroup}).
		Info("registered student")

	return created, nil
}

// RegisterTeacher binds the user to lessons whose teacher contains name.
func (r *Registrar) RegisterTeacher(ctx context.Context, profile domain.Profile, name string) (bool, error) {
	if err := r.check(ctx, profile); err != nil {
		return false, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, errors.New("teacher name is required")
	}

	created, err := r.users.SaveTeacher(ctx, profile, name)
	if err != nil {
		return false, fmt.Errorf("register teacher: %w", err)
	}

	r.logRegistration(profile.ID, domain.RoleTeacher, created).
		WithField("teacher_name", name).
		Info("registered teacher")

	return created, nil
}

// User loads a user with its group.
func (r *Registrar) User(ctx context.Context, id int64) (domain.User, error) {
	if err := r.check(ctx, domain.Profile{ID: id}); err != nil {
		return domain.User{}, err
	}

	u, err := r.users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user %d: %w", id, err)
	}
	return u, nil
}

func (r *Registrar) check(ctx context.Context, profile domain.Profile) error {
	if r == nil || r.users == nil {
		return errors.New("user registrar is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if profile.ID == 0 {
		return errors.New("user id is required")
	}
	return nil
}

func (r *Registrar) logRegistration(userID int64, role domain.Role, created bool) *logrus.Entry {
	event := "user_updated"
	if created {
		event = "user_registered"
	}
	return r.logger.WithFields(logging.Fields{
		"event":   event,
		"user_id": userID,
		"role":    role,
	})
}
