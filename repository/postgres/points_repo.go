package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type pointsRepository struct {
	pool *pgxpool.Pool
}

// NewPointsRepository returns the Postgres-backed points ledger.
func NewPointsRepository(pool *pgxpool.Pool) repository.PointsRepository {
	return &pointsRepository{pool: pool}
}

// Grant runs the ledger insert and the cached total increment in a single
// transaction so the total always equals the sum of the log.
func (r *pointsRepository) Grant(ctx context.Context, entry *domain.PointsLogEntry) (int, error) {
	if entry == nil {
		return 0, domain.ErrInvalidPayload
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var total int
	const bump = `
	UPDATE users
	SET total_points = total_points + $2,
		updated_at = NOW()
	WHERE id = $1
	RETURNING total_points
	`
	if err := tx.QueryRow(ctx, bump, entry.UserID, entry.Delta).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	const insert = `
	INSERT INTO points_log (user_id, points, reason, task_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, insert,
		entry.UserID,
		entry.Delta,
		entry.Reason,
		nullInt64(entry.TaskID),
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *pointsRepository) History(ctx context.Context, userID int64, limit int) ([]domain.PointsLogEntry, error) {
	const query = `
	SELECT id, user_id, points, reason, task_id, created_at
	FROM points_log
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, clampLimit(limit, 500))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointsLogEntry
	for rows.Next() {
		var e domain.PointsLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Reason, &e.TaskID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pointsRepository) Total(ctx context.Context, userID int64) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT total_points FROM users WHERE id = $1`, userID).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return total, nil
}
