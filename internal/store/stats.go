package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"asu_schedule_bot/internal/domain"
)

// Stats are the counters reported by /user_stats.
type Stats struct {
	Users         int64 `db:"users"`
	Teachers      int64 `db:"teachers"`
	Admins        int64 `db:"admins"`
	NotifyEnabled int64 `db:"notify_enabled"`
	Groups        int64 `db:"group_count"`
	Lessons       int64 `db:"lesson_count"`
}

type countCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// countStats builds Stats from per-collection document counts.
func countStats(ctx context.Context, users, groups, lessons countCollection) (Stats, error) {
	if ctx == nil {
		return Stats{}, errors.New("context is required")
	}
	if users == nil || groups == nil || lessons == nil {
		return Stats{}, errors.New("stats collections are not initialized")
	}

	var stats Stats
	counters := []struct {
		name   string
		coll   countCollection
		filter bson.D
		dst    *int64
	}{
		{"users", users, bson.D{}, &stats.Users},
		{"teachers", users, bson.D{{Key: "role", Value: string(domain.RoleTeacher)}}, &stats.Teachers},
		{"admins", users, bson.D{{Key: "status", Value: string(domain.StatusAdmin)}}, &stats.Admins},
		{"notify enabled", users, bson.D{{Key: "daily_notify", Value: true}}, &stats.NotifyEnabled},
		{"groups", groups, bson.D{}, &stats.Groups},
		{"lessons", lessons, bson.D{}, &stats.Lessons},
	}

	for _, c := range counters {
		count, err := c.coll.CountDocuments(ctx, c.filter)
		if err != nil {
			return Stats{}, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = count
	}

	return stats, nil
}
