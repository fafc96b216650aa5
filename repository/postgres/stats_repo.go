package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

// onTimeExpr matches a completed task that met its due date.
const onTimeExpr = `(status = 'completed' AND (due_date IS NULL OR completed_at <= due_date))`

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns the read-side aggregate queries.
func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) TaskCounts(ctx context.Context, assigneeID int64, now time.Time) (domain.TaskCounts, error) {
	const query = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'in_progress'),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE due_date IS NOT NULL AND due_date < $2 AND status <> 'completed')
	FROM tasks
	WHERE ($1 = 0 OR assignee_id = $1)
	`
	var c domain.TaskCounts
	err := r.pool.QueryRow(ctx, query, assigneeID, now).Scan(&c.Total, &c.Pending, &c.InProgress, &c.Completed, &c.Overdue)
	return c, err
}

func (r *statsRepository) UserStatistics(ctx context.Context, userID int64) (domain.UserStatistics, error) {
	var stats domain.UserStatistics

	if err := r.pool.QueryRow(ctx, `SELECT total_points FROM users WHERE id = $1`, userID).Scan(&stats.TotalPoints); err != nil {
		return stats, mapNoRows(err, domain.ErrUserNotFound)
	}

	const flagsQuery = `
	SELECT ` + onTimeExpr + `
	FROM tasks
	WHERE assignee_id = $1 AND status = 'completed'
	ORDER BY completed_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, flagsQuery, userID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	var flags []bool
	for rows.Next() {
		var onTime bool
		if err := rows.Scan(&onTime); err != nil {
			return stats, err
		}
		flags = append(flags, onTime)
		if onTime {
			stats.OnTimeCompletions++
		}
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	stats.CompletedTasks = len(flags)
	stats.OnTimeStreak = domain.OnTimeStreak(flags)
	return stats, nil
}

func (r *statsRepository) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	const query = `
	SELECT u.id, u.name, u.role, u.total_points,
		COUNT(t.id) FILTER (WHERE t.status = 'completed'),
		COUNT(t.id) FILTER (WHERE t.status = 'completed' AND (t.due_date IS NULL OR t.completed_at <= t.due_date)),
		COUNT(t.id)
	FROM users u
	LEFT JOIN tasks t ON t.assignee_id = u.id
	GROUP BY u.id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var (
			e    domain.RankingEntry
			role string
		)
		if err := rows.Scan(&e.UserID, &e.Name, &role, &e.TotalPoints, &e.CompletedTasks, &e.OnTimeTasks, &e.TotalAssigned); err != nil {
			return nil, err
		}
		e.Role = domain.Role(role)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
