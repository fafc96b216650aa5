package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Create inserts a user with a zero points total. A taken email yields
	// domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) error
	// UpdateProfile changes name and phone only.
	UpdateProfile(ctx context.Context, user *domain.User) error
}
