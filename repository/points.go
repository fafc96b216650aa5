package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

// PointsRepository stores the append-only points ledger and the cached
// per-user total.
type PointsRepository interface {
	// Grant inserts entry and adds its delta to the user's cached total as
	// one atomic unit, returning the new total.
	Grant(ctx context.Context, entry *domain.PointsLogEntry) (int, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.PointsLogEntry, error)
	Total(ctx context.Context, userID int64) (int, error)
}
