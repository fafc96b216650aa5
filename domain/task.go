package domain

import (
	"fmt"
	"time"
)

// TaskStatus is a state of the task lifecycle.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority of a task. It drives the base points of a completion.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	_, ok := basePoints[p]
	return ok
}

const (
	defaultBasePoints = 10
	onTimeBonus       = 5
)

var basePoints = map[Priority]int{
	PriorityLow:    5,
	PriorityMedium: 10,
	PriorityHigh:   20,
	PriorityUrgent: 30,
}

// CalculatePoints returns the points earned by completing a task of the
// given priority. Unknown priorities score like medium.
func CalculatePoints(priority Priority, onTime bool) int {
	points, ok := basePoints[priority]
	if !ok {
		points = defaultBasePoints
	}
	if onTime {
		points += onTimeBonus
	}
	return points
}

// IsOnTime reports whether a completion at completedAt meets the due date.
// A task without a due date is always on time.
func IsOnTime(due *time.Time, completedAt time.Time) bool {
	return due == nil || !completedAt.After(*due)
}

// Task represents a unit of work on the team board.
type Task struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	AssigneeID    *int64     `json:"assignee_id,omitempty"`
	CreatorID     int64      `json:"creator_id"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	PointsAwarded int        `json:"points_awarded"`
	SortOrder     int        `json:"sort_order"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsAssignee reports whether userID is the task's assignee.
func (t *Task) IsAssignee(userID int64) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == userID
}

// IsOverdue reports whether the task is past its due date and still open.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// CompletedOnTime reports whether a completed task met its due date.
func (t *Task) CompletedOnTime() bool {
	return t.IsCompleted() && t.CompletedAt != nil && IsOnTime(t.DueDate, *t.CompletedAt)
}

// Transition moves the task to status at the given instant and returns
// whether the move is a completion. Entering completed stamps the
// completion time and computes the award; leaving it clears both.
func (t *Task) Transition(status TaskStatus, now time.Time) (completed bool, err error) {
	if !status.Valid() {
		return false, Invalid("invalid status %q", status)
	}
	switch {
	case status == StatusCompleted && t.Status != StatusCompleted:
		completedAt := now
		t.CompletedAt = &completedAt
		t.PointsAwarded = CalculatePoints(t.Priority, IsOnTime(t.DueDate, now))
		completed = true
	case status != StatusCompleted:
		t.CompletedAt = nil
		t.PointsAwarded = 0
	}
	t.Status = status
	return completed, nil
}

// CompletionReason is the ledger reason recorded for a completed task.
func (t *Task) CompletionReason() string {
	return fmt.Sprintf(`Completed task "%s"`, t.Title)
}
