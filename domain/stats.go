package domain

import (
	"math"
	"sort"
	"time"
)

// TaskCounts are raw task tallies for a scope.
type TaskCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// DashboardStats summarizes tasks for a dashboard.
type DashboardStats struct {
	TaskCounts
	CompletionRate int `json:"completion_rate"`
}

// CompletionRate returns completed/total as a rounded percentage, 0 when
// there are no tasks.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// NewDashboardStats derives the dashboard view from counts.
func NewDashboardStats(counts TaskCounts) DashboardStats {
	return DashboardStats{
		TaskCounts:     counts,
		CompletionRate: CompletionRate(counts.Completed, counts.Total),
	}
}

// CountTasks tallies tasks as of now.
func CountTasks(tasks []Task, now time.Time) TaskCounts {
	var c TaskCounts
	for i := range tasks {
		t := &tasks[i]
		c.Total++
		switch t.Status {
		case StatusPending:
			c.Pending++
		case StatusInProgress:
			c.InProgress++
		case StatusCompleted:
			c.Completed++
		}
		if t.IsOverdue(now) {
			c.Overdue++
		}
	}
	return c
}

// RankingEntry is one row of the points ranking.
type RankingEntry struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	Role           Role   `json:"role"`
	TotalPoints    int    `json:"total_points"`
	CompletedTasks int    `json:"completed_tasks"`
	OnTimeTasks    int    `json:"on_time_tasks"`
	TotalAssigned  int    `json:"total_assigned"`
}

// SortRanking orders entries by points descending, then user id ascending.
func SortRanking(entries []RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].UserID < entries[j].UserID
	})
}
