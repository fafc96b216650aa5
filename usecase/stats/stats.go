package stats

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

const rankingKey = "ranking"

// UseCase answers read-side questions: dashboard counters and the points
// ranking.
type UseCase struct {
	stats  repository.StatsRepository
	cache  repository.RankingCache
	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

// New builds the aggregator. cache may be nil, in which case every ranking
// is computed from the store.
func New(stats repository.StatsRepository, cache repository.RankingCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		stats:  stats,
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the time source used for overdue checks.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// DashboardStats tallies tasks assigned to userID, or all tasks when userID
// is nil.
func (uc *UseCase) DashboardStats(ctx context.Context, userID *int64) (*domain.DashboardStats, error) {
	var assignee int64
	if userID != nil {
		if *userID <= 0 {
			return nil, domain.Invalid("invalid user id")
		}
		assignee = *userID
	}
	counts, err := uc.stats.TaskCounts(ctx, assignee, uc.now())
	if err != nil {
		return nil, domain.Persistence("count tasks", err)
	}
	stats := domain.NewDashboardStats(counts)
	return &stats, nil
}

// Ranking returns every user ordered by points, highest first, ties broken
// by ascending user id.
func (uc *UseCase) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	if uc.cache != nil {
		entries, ok, err := uc.cache.Get(ctx)
		switch {
		case err != nil:
			uc.logger.Warn("ranking cache read failed", zap.Error(err))
		case ok:
			return entries, nil
		}
	}

	v, err, _ := uc.group.Do(rankingKey, func() (interface{}, error) {
		return uc.computeRanking(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.RankingEntry), nil
}

func (uc *UseCase) computeRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	entries, err := uc.stats.Ranking(ctx)
	if err != nil {
		return nil, domain.Persistence("compute ranking", err)
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	domain.SortRanking(entries)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, entries); err != nil {
			uc.logger.Warn("ranking cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}
