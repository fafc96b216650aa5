package points

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/internal/metrics"
	"github.com/fastygo/teamboard/repository"
)

const maxHistory = 500

// Ledger is the only writer of user point totals.
type Ledger struct {
	points repository.PointsRepository
	cache  repository.RankingCache
	logger *zap.Logger
}

// NewLedger builds a ledger. cache may be nil.
func NewLedger(points repository.PointsRepository, cache repository.RankingCache, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{points: points, cache: cache, logger: logger}
}

// Grant appends an entry and bumps the user's cached total atomically.
// Corrections are made with a negative delta; history is never edited.
func (l *Ledger) Grant(ctx context.Context, userID int64, delta int, reason string, taskID *int64) (*domain.PointsLogEntry, int, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case userID <= 0:
		return nil, 0, domain.Invalid("user id is required")
	case delta == 0:
		return nil, 0, domain.Invalid("points delta must be non-zero")
	case reason == "":
		return nil, 0, domain.Invalid("reason is required")
	}

	entry := &domain.PointsLogEntry{
		UserID: userID,
		Delta:  delta,
		Reason: reason,
		TaskID: taskID,
	}
	total, err := l.points.Grant(ctx, entry)
	if err != nil {
		return nil, 0, domain.Persistence("grant points", err)
	}

	if delta > 0 {
		metrics.PointsGranted.Add(float64(delta))
	} else {
		metrics.PointsDeducted.Add(float64(-delta))
	}
	l.logger.Info("points granted",
		zap.Int64("user_id", userID),
		zap.Int("delta", delta),
		zap.Int("total", total))

	if l.cache != nil {
		if err := l.cache.Invalidate(ctx); err != nil {
			l.logger.Warn("ranking cache invalidation failed", zap.Error(err))
		}
	}
	return entry, total, nil
}

// History returns the user's entries newest first.
func (l *Ledger) History(ctx context.Context, userID int64, limit int) ([]domain.PointsLogEntry, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}
	entries, err := l.points.History(ctx, userID, limit)
	if err != nil {
		return nil, domain.Persistence("load points history", err)
	}
	return entries, nil
}

// Total reads the cached total without re-summing the log.
func (l *Ledger) Total(ctx context.Context, userID int64) (int, error) {
	total, err := l.points.Total(ctx, userID)
	if err != nil {
		return 0, domain.Persistence("load points total", err)
	}
	return total, nil
}
