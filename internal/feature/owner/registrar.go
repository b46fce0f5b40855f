// Package owner provides startup helpers for ensuring the configured bot owner
// holds admin status.
package owner

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/logging"
)

type adminStore interface {
	EnsureAdmin(ctx context.Context, userID int64) error
}

// Registrar bootstraps the configured bot owner record.
type Registrar struct {
	users  adminStore
	logger *logrus.Entry
}

// NewRegistrar constructs a Registrar backed by the provided store.
func NewRegistrar(users adminStore, logger *logrus.Entry) *Registrar {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Registrar{
		users:  users,
		logger: logger,
	}
}

// EnsureOwner grants admin status to ownerID, creating a bare user record when
// the owner has never talked to the bot. Registration data is kept.
func (r *Registrar) EnsureOwner(ctx context.Context, ownerID int64) error {
	if r == nil || r.users == nil {
		return errors.New("owner registrar is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if ownerID == 0 {
		return errors.New("owner id is required")
	}

	if err := r.users.EnsureAdmin(ctx, ownerID); err != nil {
		return fmt.Errorf("ensure owner: %w", err)
	}

	r.logger.WithFields(logging.Fields{
		"event":    "owner_bootstrap",
		"owner_id": ownerID,
	}).Info("ensured bot owner")

	return nil
}
