package domain

import "time"

// Requirement names the statistic a badge threshold is measured against.
type Requirement string

const (
	RequirementTasksCompleted Requirement = "tasks_completed"
	RequirementPoints         Requirement = "points"
	RequirementOnTimeTasks    Requirement = "on_time_tasks"
	RequirementOnTimeStreak   Requirement = "on_time_streak"
)

var requirementStatistics = map[Requirement]func(UserStatistics) int{
	RequirementTasksCompleted: func(s UserStatistics) int { return s.CompletedTasks },
	RequirementPoints:         func(s UserStatistics) int { return s.TotalPoints },
	RequirementOnTimeTasks:    func(s UserStatistics) int { return s.OnTimeCompletions },
	RequirementOnTimeStreak:   func(s UserStatistics) int { return s.OnTimeStreak },
}

func (r Requirement) Valid() bool {
	_, ok := requirementStatistics[r]
	return ok
}

// Statistic returns the value of the statistic r measures. The boolean is
// false for requirements outside the known set.
func (r Requirement) Statistic(stats UserStatistics) (int, bool) {
	fn, ok := requirementStatistics[r]
	if !ok {
		return 0, false
	}
	return fn(stats), true
}

// Badge is static reference data describing an achievement.
type Badge struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Requirement Requirement `json:"requirement"`
	Threshold   int         `json:"threshold"`
}

// SatisfiedBy reports whether stats reach the badge threshold.
func (b Badge) SatisfiedBy(stats UserStatistics) bool {
	value, ok := b.Requirement.Statistic(stats)
	return ok && value >= b.Threshold
}

// UserBadge records that a user earned a badge. It is created once per
// (user, badge) pair and never revoked.
type UserBadge struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	BadgeID  int64     `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
	Badge    *Badge    `json:"badge,omitempty"`
}

// UserStatistics are the per-user aggregates badges are evaluated on.
type UserStatistics struct {
	TotalPoints       int `json:"total_points"`
	CompletedTasks    int `json:"completed_tasks"`
	OnTimeCompletions int `json:"on_time_completions"`
	OnTimeStreak      int `json:"on_time_streak"`
}

// OnTimeStreak counts leading true values of flags ordered newest first.
func OnTimeStreak(flags []bool) int {
	streak := 0
	for _, onTime := range flags {
		if !onTime {
			break
		}
		streak++
	}
	return streak
}

// BadgeCatalog is the fixed set of badges seeded on an empty badge table.
func BadgeCatalog() []Badge {
	return []Badge{
		{Name: "First Steps", Description: "Complete your first task", Icon: "footprints", Requirement: RequirementTasksCompleted, Threshold: 1},
		{Name: "Getting Things Done", Description: "Complete 10 tasks", Icon: "check-circle", Requirement: RequirementTasksCompleted, Threshold: 10},
		{Name: "Task Master", Description: "Complete 50 tasks", Icon: "crown", Requirement: RequirementTasksCompleted, Threshold: 50},
		{Name: "Point Collector", Description: "Earn 100 points", Icon: "star", Requirement: RequirementPoints, Threshold: 100},
		{Name: "High Achiever", Description: "Earn 500 points", Icon: "trophy", Requirement: RequirementPoints, Threshold: 500},
		{Name: "Legend", Description: "Earn 1000 points", Icon: "gem", Requirement: RequirementPoints, Threshold: 1000},
		{Name: "Punctual", Description: "Complete 5 tasks on time", Icon: "clock", Requirement: RequirementOnTimeTasks, Threshold: 5},
		{Name: "Clockwork", Description: "Complete 25 tasks on time", Icon: "timer", Requirement: RequirementOnTimeTasks, Threshold: 25},
		{Name: "On a Roll", Description: "Complete 5 tasks on time in a row", Icon: "flame", Requirement: RequirementOnTimeStreak, Threshold: 5},
	}
}
