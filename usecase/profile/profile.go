package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
)

// RecentPointsLimit caps the ledger entries shown on a profile.
const RecentPointsLimit = 20

type Profile struct {
	User         *domain.User            `json:"user"`
	Badges       []domain.UserBadge      `json:"badges"`
	RecentPoints []domain.PointsLogEntry `json:"recent_points"`
}

type UpdateInput struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type UseCase struct {
	users  repository.UserRepository
	badges repository.BadgeRepository
	points repository.PointsRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, badges repository.BadgeRepository, points repository.PointsRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		badges: badges,
		points: points,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("load user", err)
	}
	badges, err := uc.badges.ListEarned(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("list badges", err)
	}
	recent, err := uc.points.History(ctx, userID, RecentPointsLimit)
	if err != nil {
		return nil, domain.Persistence("load points history", err)
	}
	if badges == nil {
		badges = []domain.UserBadge{}
	}
	if recent == nil {
		recent = []domain.PointsLogEntry{}
	}
	return &Profile{User: user, Badges: badges, RecentPoints: recent}, nil
}

// UpdateProfile edits the actor's own name and phone. Points, role and
// email are not editable here.
func (uc *UseCase) UpdateProfile(ctx context.Context, actor *domain.Actor, in UpdateInput) (*domain.User, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := usecase.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, domain.Persistence("load user", err)
	}
	user.Name = in.Name
	user.Phone = in.Phone
	if in.Phone != nil && strings.TrimSpace(*in.Phone) == "" {
		user.Phone = nil
	}
	if err := uc.users.UpdateProfile(ctx, user); err != nil {
		return nil, domain.Persistence("update profile", err)
	}
	return user, nil
}
