package repository

import (
	"context"
	"time"

	"github.com/fastygo/teamboard/domain"
)

// StatsRepository computes read-side aggregates over tasks and users.
type StatsRepository interface {
	// TaskCounts tallies tasks assigned to assigneeID, or all tasks when
	// assigneeID is zero.
	TaskCounts(ctx context.Context, assigneeID int64, now time.Time) (domain.TaskCounts, error)
	UserStatistics(ctx context.Context, userID int64) (domain.UserStatistics, error)
	// Ranking returns one row per user in no particular order.
	Ranking(ctx context.Context) ([]domain.RankingEntry, error)
}

// RankingCache holds a computed ranking between writes.
type RankingCache interface {
	Get(ctx context.Context) ([]domain.RankingEntry, bool, error)
	Set(ctx context.Context, entries []domain.RankingEntry) error
	Invalidate(ctx context.Context) error
}
