package usecase

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

// Notifier delivers notifications to users over an external channel.
// Delivery is best effort and never affects engine state.
type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}

// PointsGranter appends to the points ledger.
type PointsGranter interface {
	Grant(ctx context.Context, userID int64, delta int, reason string, taskID *int64) (*domain.PointsLogEntry, int, error)
}

// BadgeEvaluator awards badges whose thresholds a user has newly reached.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID int64) ([]domain.Badge, error)
}

// ActivityLogger appends to the activity trail.
type ActivityLogger interface {
	Log(ctx context.Context, userID int64, action domain.Action, entityType string, entityID *int64, details string) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.Notification) error { return nil }

// NopNotifier discards every notification.
var NopNotifier Notifier = nopNotifier{}
