package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type badgeRepository struct {
	pool *pgxpool.Pool
}

// NewBadgeRepository returns a Postgres-backed BadgeRepository.
func NewBadgeRepository(pool *pgxpool.Pool) repository.BadgeRepository {
	return &badgeRepository{pool: pool}
}

func (r *badgeRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM badges`).Scan(&n)
	return n, err
}

func (r *badgeRepository) InsertCatalog(ctx context.Context, badges []domain.Badge) (int, error) {
	const query = `
	INSERT INTO badges (name, description, icon, requirement, threshold)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (name) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, b := range badges {
		batch.Queue(query, b.Name, b.Description, b.Icon, string(b.Requirement), b.Threshold)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range badges {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *badgeRepository) List(ctx context.Context) ([]domain.Badge, error) {
	const query = `
	SELECT id, name, description, icon, requirement, threshold
	FROM badges
	ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}

func (r *badgeRepository) ListEarned(ctx context.Context, userID int64) ([]domain.UserBadge, error) {
	const query = `
	SELECT ub.id, ub.user_id, ub.badge_id, ub.earned_at,
		b.id, b.name, b.description, b.icon, b.requirement, b.threshold
	FROM user_badges ub
	JOIN badges b ON b.id = ub.badge_id
	WHERE ub.user_id = $1
	ORDER BY ub.earned_at DESC, ub.id DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []domain.UserBadge
	for rows.Next() {
		var (
			ub          domain.UserBadge
			b           domain.Badge
			requirement string
		)
		if err := rows.Scan(
			&ub.ID, &ub.UserID, &ub.BadgeID, &ub.EarnedAt,
			&b.ID, &b.Name, &b.Description, &b.Icon, &requirement, &b.Threshold,
		); err != nil {
			return nil, err
		}
		b.Requirement = domain.Requirement(requirement)
		ub.Badge = &b
		earned = append(earned, ub)
	}
	return earned, rows.Err()
}

func (r *badgeRepository) Award(ctx context.Context, userID, badgeID int64, earnedAt time.Time) (*domain.UserBadge, bool, error) {
	const query = `
	INSERT INTO user_badges (user_id, badge_id, earned_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, badge_id) DO NOTHING
	RETURNING id, earned_at
	`

	ub := &domain.UserBadge{UserID: userID, BadgeID: badgeID}
	if err := r.pool.QueryRow(ctx, query, userID, badgeID, earnedAt).Scan(&ub.ID, &ub.EarnedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		if isForeignKeyViolation(err) {
			return nil, false, domain.ErrBadgeNotFound
		}
		return nil, false, err
	}
	return ub, true, nil
}

func scanBadge(row scanner) (*domain.Badge, error) {
	var (
		b           domain.Badge
		requirement string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &requirement, &b.Threshold); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, err
	}
	b.Requirement = domain.Requirement(requirement)
	return &b, nil
}
