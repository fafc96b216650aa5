package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

const taskColumns = `id, title, description, status, priority, assignee_id, creator_id, due_date,
	completed_at, points_awarded, sort_order, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = 0 OR assignee_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY sort_order ASC, id ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.AssigneeID, string(filter.Status), clampLimit(filter.Limit, 100), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, status, priority, assignee_id, creator_id, due_date, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7,
		CASE WHEN $8 > 0 THEN $8 ELSE (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM tasks) END)
	RETURNING id, sort_order, created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullInt64(task.AssigneeID),
		task.CreatorID,
		nullTime(task.DueDate),
		task.SortOrder,
	).Scan(&task.ID, &task.SortOrder, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		priority = $4,
		assignee_id = $5,
		due_date = $6,
		sort_order = $7,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Priority),
		nullInt64(task.AssigneeID),
		nullTime(task.DueDate),
		task.SortOrder,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, task *domain.Task, from domain.TaskStatus) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET status = $2,
		completed_at = $3,
		points_awarded = $4,
		updated_at = NOW()
	WHERE id = $1 AND status = $5
	RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		task.ID,
		string(task.Status),
		nullTime(task.CompletedAt),
		task.PointsAwarded,
		string(from),
	).Scan(&task.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// Either the row is gone or its status moved underneath us.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, task.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrTaskConflict
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task     domain.Task
		status   string
		priority string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.AssigneeID,
		&task.CreatorID,
		&task.DueDate,
		&task.CompletedAt,
		&task.PointsAwarded,
		&task.SortOrder,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(priority)
	return &task, nil
}
