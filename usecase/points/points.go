package points

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/usecase"
)

// AdjustInput is a manual points adjustment made by an admin.
type AdjustInput struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Amount int    `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required,max=255"`
}

// Adjustment is the outcome of a manual adjustment.
type Adjustment struct {
	Entry     *domain.PointsLogEntry `json:"entry"`
	Total     int                    `json:"total"`
	NewBadges []domain.Badge         `json:"new_badges"`
	Warnings  []string               `json:"-"`
}

type UseCase struct {
	ledger   *Ledger
	badges   usecase.BadgeEvaluator
	activity usecase.ActivityLogger
	notifier usecase.Notifier
	logger   *zap.Logger
}

func New(ledger *Ledger, badges usecase.BadgeEvaluator, activity usecase.ActivityLogger, notifier usecase.Notifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = usecase.NopNotifier
	}
	return &UseCase{
		ledger:   ledger,
		badges:   badges,
		activity: activity,
		notifier: notifier,
		logger:   logger,
	}
}

// Adjust grants a signed amount to a user, then evaluates badges and
// records the activity. The grant is the primary write; failures after it
// come back as warnings.
func (uc *UseCase) Adjust(ctx context.Context, actor *domain.Actor, in AdjustInput) (*Adjustment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if err := usecase.Validate(in); err != nil {
		return nil, err
	}

	entry, total, err := uc.ledger.Grant(ctx, in.UserID, in.Amount, in.Reason, nil)
	if err != nil {
		return nil, err
	}

	result := &Adjustment{Entry: entry, Total: total}
	effects := usecase.NewSideEffects(uc.logger.With(zap.Int64("user_id", in.UserID)))

	badges, err := uc.badges.Evaluate(ctx, in.UserID)
	effects.Record("badge_evaluation", err)
	result.NewBadges = badges

	details := fmt.Sprintf("Adjusted points of user %d by %+d: %s", in.UserID, in.Amount, in.Reason)
	effects.Record("activity_log", uc.activity.Log(ctx, actor.UserID, domain.ActionUpdated, domain.EntityPoints, &entry.ID, details))
	for _, b := range result.NewBadges {
		badgeID := b.ID
		effects.Record("activity_log", uc.activity.Log(ctx, in.UserID, domain.ActionEarnedBadge, domain.EntityBadge, &badgeID,
			fmt.Sprintf(`Earned badge "%s"`, b.Name)))
		effects.Record("notification", uc.notifier.Notify(ctx, badgeNotification(in.UserID, b)))
	}

	result.Warnings = effects.Warnings()
	return result, nil
}

func badgeNotification(userID int64, b domain.Badge) domain.Notification {
	return domain.Notification{
		UserID:    userID,
		Kind:      domain.NotifyBadgeEarned,
		Title:     "New badge earned",
		Body:      fmt.Sprintf("You earned the %s badge: %s", b.Name, b.Description),
		CreatedAt: time.Now(),
	}
}
