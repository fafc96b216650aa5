package badge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/internal/metrics"
	"github.com/fastygo/teamboard/repository"
)

// Evaluator awards badges once a user's statistics reach their thresholds.
type Evaluator struct {
	badges repository.BadgeRepository
	stats  repository.StatsRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(badges repository.BadgeRepository, stats repository.StatsRepository, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		badges: badges,
		stats:  stats,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate awards every badge the user now qualifies for and does not yet
// hold, returning only the badges awarded by this call. A second call with
// unchanged statistics returns nothing.
func (e *Evaluator) Evaluate(ctx context.Context, userID int64) ([]domain.Badge, error) {
	stats, err := e.stats.UserStatistics(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("load user statistics", err)
	}

	catalog, err := e.badges.List(ctx)
	if err != nil {
		return nil, domain.Persistence("load badge catalog", err)
	}

	earned, err := e.badges.ListEarned(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("load earned badges", err)
	}
	held := make(map[int64]struct{}, len(earned))
	for _, ub := range earned {
		held[ub.BadgeID] = struct{}{}
	}

	var awarded []domain.Badge
	for _, b := range catalog {
		if _, ok := held[b.ID]; ok {
			continue
		}
		if !b.Requirement.Valid() {
			e.logger.Warn("skipping badge with unknown requirement",
				zap.String("badge", b.Name),
				zap.String("requirement", string(b.Requirement)))
			continue
		}
		if !b.SatisfiedBy(stats) {
			continue
		}

		_, inserted, err := e.badges.Award(ctx, userID, b.ID, e.now())
		if err != nil {
			return awarded, domain.Persistence("award badge", err)
		}
		// A concurrent evaluation may have won the insert.
		if !inserted {
			continue
		}
		metrics.BadgesAwarded.WithLabelValues(b.Name).Inc()
		e.logger.Info("badge awarded", zap.Int64("user_id", userID), zap.String("badge", b.Name))
		awarded = append(awarded, b)
	}
	return awarded, nil
}

// EnsureCatalog seeds the fixed badge catalog when the badge table is empty.
// Existing rows are never overwritten; the unique badge name absorbs
// concurrent bootstraps.
func (e *Evaluator) EnsureCatalog(ctx context.Context) (int, error) {
	count, err := e.badges.Count(ctx)
	if err != nil {
		return 0, domain.Persistence("count badges", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted, err := e.badges.InsertCatalog(ctx, domain.BadgeCatalog())
	if err != nil {
		return inserted, domain.Persistence("seed badge catalog", err)
	}
	e.logger.Info("badge catalog seeded", zap.Int("inserted", inserted))
	return inserted, nil
}

func (e *Evaluator) Catalog(ctx context.Context) ([]domain.Badge, error) {
	badges, err := e.badges.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list badges", err)
	}
	return badges, nil
}

func (e *Evaluator) Earned(ctx context.Context, userID int64) ([]domain.UserBadge, error) {
	earned, err := e.badges.ListEarned(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("list earned badges", err)
	}
	return earned, nil
}
