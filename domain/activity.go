package domain

import "time"

// Action tags an activity log entry.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionStatusChanged Action = "status_changed"
	ActionEarnedBadge   Action = "earned_badge"
	ActionCompleted     Action = "completed"
	ActionCommented     Action = "commented"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionStatusChanged,
		ActionEarnedBadge, ActionCompleted, ActionCommented:
		return true
	}
	return false
}

// Entity types referenced by activity entries.
const (
	EntityTask    = "task"
	EntityBadge   = "badge"
	EntityPoints  = "points"
	EntityComment = "comment"
)

// ActivityLogEntry is an append-only audit record of a user-visible action.
type ActivityLogEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Action     Action    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *int64    `json:"entity_id,omitempty"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}
