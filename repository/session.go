package repository

import (
	"context"
	"time"

	"github.com/fastygo/teamboard/domain"
)

// SessionRepository stores login sessions. Get reports
// domain.ErrSessionNotFound for unknown and expired sessions alike.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
	// Extend moves the session expiry to now+ttl.
	Extend(ctx context.Context, id string, ttl time.Duration) error
}
