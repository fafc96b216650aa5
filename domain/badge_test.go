package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequirement_Statistic(t *testing.T) {
	stats := UserStatistics{TotalPoints: 120, CompletedTasks: 7, OnTimeCompletions: 5, OnTimeStreak: 3}

	tests := []struct {
		req  Requirement
		want int
	}{
		{RequirementPoints, 120},
		{RequirementTasksCompleted, 7},
		{RequirementOnTimeTasks, 5},
		{RequirementOnTimeStreak, 3},
	}
	for _, tt := range tests {
		got, ok := tt.req.Statistic(stats)
		assert.True(t, ok, tt.req)
		assert.Equal(t, tt.want, got, tt.req)
	}

	_, ok := Requirement("logins").Statistic(stats)
	assert.False(t, ok)
}

func TestBadge_SatisfiedBy(t *testing.T) {
	badge := Badge{Requirement: RequirementPoints, Threshold: 100}

	assert.True(t, badge.SatisfiedBy(UserStatistics{TotalPoints: 100}))
	assert.False(t, badge.SatisfiedBy(UserStatistics{TotalPoints: 99}))
	assert.False(t, Badge{Requirement: "unknown", Threshold: 0}.SatisfiedBy(UserStatistics{}))
}

func TestOnTimeStreak(t *testing.T) {
	assert.Equal(t, 0, OnTimeStreak(nil))
	assert.Equal(t, 2, OnTimeStreak([]bool{true, true, false, true}))
	assert.Equal(t, 0, OnTimeStreak([]bool{false, true}))
}

func TestBadgeCatalog_UsesKnownRequirements(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range BadgeCatalog() {
		assert.True(t, b.Requirement.Valid(), b.Name)
		assert.Positive(t, b.Threshold, b.Name)
		assert.False(t, seen[b.Name], "duplicate badge %s", b.Name)
		seen[b.Name] = true
	}
}
