package repository

import (
	"context"
	"time"

	"github.com/fastygo/teamboard/domain"
)

type BadgeRepository interface {
	Count(ctx context.Context) (int, error)
	// InsertCatalog adds badges, skipping names that already exist.
	InsertCatalog(ctx context.Context, badges []domain.Badge) (int, error)
	List(ctx context.Context) ([]domain.Badge, error)
	ListEarned(ctx context.Context, userID int64) ([]domain.UserBadge, error)
	// Award records the badge for the user. The boolean is false when the
	// pair already existed, in which case nothing is written.
	Award(ctx context.Context, userID, badgeID int64, earnedAt time.Time) (*domain.UserBadge, bool, error)
}
