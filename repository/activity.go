package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

type ActivityFilter struct {
	UserID int64
	Limit  int
}

type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLogEntry, error)
}
