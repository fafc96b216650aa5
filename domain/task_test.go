package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePoints_OnTimeBonus(t *testing.T) {
	priorities := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, Priority("bogus")}
	for _, p := range priorities {
		assert.Equal(t, CalculatePoints(p, false)+5, CalculatePoints(p, true), "priority %s", p)
	}
}

func TestCalculatePoints_Base(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityLow, 5},
		{PriorityMedium, 10},
		{PriorityHigh, 20},
		{PriorityUrgent, 30},
		{Priority(""), 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculatePoints(tt.priority, false), "priority %q", tt.priority)
	}
}

func TestIsOnTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, IsOnTime(nil, now))
	assert.True(t, IsOnTime(&now, now))
	assert.True(t, IsOnTime(&future, now))
	assert.False(t, IsOnTime(&past, now))
}

func TestTask_TransitionIntoCompleted(t *testing.T) {
	now := time.Now()
	task := &Task{Title: "Ship report", Status: StatusInProgress, Priority: PriorityUrgent}

	completed, err := task.Transition(StatusCompleted, now)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 35, task.PointsAwarded)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
}

func TestTask_TransitionLateCompletion(t *testing.T) {
	now := time.Now()
	due := now.Add(-24 * time.Hour)
	task := &Task{Status: StatusPending, Priority: PriorityLow, DueDate: &due}

	_, err := task.Transition(StatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, 5, task.PointsAwarded)
}

func TestTask_TransitionOutOfCompleted(t *testing.T) {
	now := time.Now()
	task := &Task{Status: StatusCompleted, Priority: PriorityHigh, CompletedAt: &now, PointsAwarded: 25}

	completed, err := task.Transition(StatusPending, now)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Nil(t, task.CompletedAt)
	assert.Zero(t, task.PointsAwarded)
	assert.Equal(t, StatusPending, task.Status)
}

func TestTask_TransitionRejectsUnknownStatus(t *testing.T) {
	task := &Task{Status: StatusPending}
	_, err := task.Transition(TaskStatus("archived"), time.Now())
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.Equal(t, StatusPending, task.Status)
}

func TestTask_CompletionReason(t *testing.T) {
	task := &Task{Title: "Ship report"}
	assert.Equal(t, `Completed task "Ship report"`, task.CompletionReason())
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	assert.True(t, (&Task{Status: StatusPending, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusCompleted, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusPending}).IsOverdue(now))
}
