package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 67, CompletionRate(2, 3))
	assert.Equal(t, 100, CompletionRate(4, 4))
}

func TestCountTasks(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	tasks := []Task{
		{Status: StatusPending, DueDate: &past},
		{Status: StatusInProgress},
		{Status: StatusCompleted, DueDate: &past},
		{Status: StatusCompleted},
	}

	stats := NewDashboardStats(CountTasks(tasks, now))
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 50, stats.CompletionRate)
}

func TestSortRanking_TieBreakByUserID(t *testing.T) {
	entries := []RankingEntry{
		{UserID: 3, TotalPoints: 10},
		{UserID: 1, TotalPoints: 40},
		{UserID: 2, TotalPoints: 10},
	}
	SortRanking(entries)

	ids := []int64{entries[0].UserID, entries[1].UserID, entries[2].UserID}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}
