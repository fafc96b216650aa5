package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a Postgres-backed append-only activity log.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO activity_log (user_id, action, entity_type, entity_id, details)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		entry.UserID,
		string(entry.Action),
		entry.EntityType,
		nullInt64(entry.EntityID),
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	const query = `
	SELECT id, user_id, action, entity_type, entity_id, details, created_at
	FROM activity_log
	WHERE ($1 = 0 OR user_id = $1)
	ORDER BY created_at DESC, id DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, clampLimit(filter.Limit, 500))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityLogEntry
	for rows.Next() {
		var (
			e      domain.ActivityLogEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = domain.Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
