package task

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/usecase"
)

type CommentInput struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// AddComment posts a comment on a task. Only the assignee or an admin may
// comment.
func (uc *UseCase) AddComment(ctx context.Context, actor *domain.Actor, taskID int64, in CommentInput) (*domain.Comment, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	in.Body = strings.TrimSpace(in.Body)
	if err := usecase.Validate(in); err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, domain.Persistence("load task", err)
	}
	if !actor.IsAdmin() && !task.IsAssignee(actor.UserID) {
		return nil, domain.ErrForbidden
	}

	comment := &domain.Comment{TaskID: taskID, UserID: actor.UserID, Body: in.Body}
	if err := uc.comments.Create(ctx, comment); err != nil {
		return nil, domain.Persistence("create comment", err)
	}

	effects := usecase.NewSideEffects(uc.logger.With(zap.Int64("task_id", taskID)))
	effects.Record("activity_log", uc.activity.Log(ctx, actor.UserID, domain.ActionCommented, domain.EntityTask, &taskID,
		fmt.Sprintf(`Commented on task "%s"`, task.Title)))
	return comment, nil
}

func (uc *UseCase) ListComments(ctx context.Context, actor *domain.Actor, taskID int64) ([]domain.Comment, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if _, err := uc.tasks.GetByID(ctx, taskID); err != nil {
		return nil, domain.Persistence("load task", err)
	}
	comments, err := uc.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, domain.Persistence("list comments", err)
	}
	return comments, nil
}
