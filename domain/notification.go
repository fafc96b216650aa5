package domain

import "time"

// NotificationKind classifies outbound notifications.
type NotificationKind string

const (
	NotifyTaskAssigned  NotificationKind = "task_assigned"
	NotifyPointsAwarded NotificationKind = "points_awarded"
	NotifyBadgeEarned   NotificationKind = "badge_earned"
)

// Notification is a message for a user delivered by an external channel.
type Notification struct {
	UserID    int64            `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
}
