package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) repository.CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO task_comments (task_id, user_id, body)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, comment.TaskID, comment.UserID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil && isForeignKeyViolation(err) {
		return domain.ErrTaskNotFound
	}
	return err
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, user_id, body, created_at
	FROM task_comments
	WHERE task_id = $1
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
