package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Recorder appends to and reads the activity trail.
type Recorder struct {
	entries repository.ActivityRepository
	logger  *zap.Logger
}

func New(entries repository.ActivityRepository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{entries: entries, logger: logger}
}

func (r *Recorder) Log(ctx context.Context, userID int64, action domain.Action, entityType string, entityID *int64, details string) error {
	if !action.Valid() {
		return domain.Invalid("invalid activity action %q", action)
	}
	if entityType == "" {
		return domain.Invalid("entity type is required")
	}

	entry := &domain.ActivityLogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := r.entries.Append(ctx, entry); err != nil {
		return domain.Persistence("append activity", err)
	}
	r.logger.Debug("activity recorded",
		zap.Int64("user_id", userID),
		zap.String("action", string(action)),
		zap.String("entity_type", entityType))
	return nil
}

// List returns entries newest first. A zero UserID lists everyone.
func (r *Recorder) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	filter.Limit = ClampLimit(filter.Limit)
	entries, err := r.entries.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("list activity", err)
	}
	return entries, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
