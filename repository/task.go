package repository

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

type TaskFilter struct {
	AssigneeID int64
	Status     domain.TaskStatus
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	// Update writes the editable fields. Status, completion time and
	// awarded points are left untouched.
	Update(ctx context.Context, task *domain.Task) error
	// UpdateStatus writes status, completion time and awarded points only
	// if the stored status still equals from. Otherwise it returns
	// domain.ErrTaskConflict.
	UpdateStatus(ctx context.Context, task *domain.Task, from domain.TaskStatus) error
	Delete(ctx context.Context, id int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTask(ctx context.Context, taskID int64) ([]domain.Comment, error)
}
