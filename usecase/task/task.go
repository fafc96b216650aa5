package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/internal/metrics"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
)

// Deps wires the controller to its stores and collaborators. Notifier,
// Cache and Clock are optional.
type Deps struct {
	Tasks    repository.TaskRepository
	Comments repository.CommentRepository
	Users    repository.UserRepository
	Ledger   usecase.PointsGranter
	Badges   usecase.BadgeEvaluator
	Activity usecase.ActivityLogger
	Notifier usecase.Notifier
	Cache    repository.RankingCache
	Clock    func() time.Time
}

// UseCase owns the task lifecycle. It is the only component that writes a
// task's status.
type UseCase struct {
	tasks    repository.TaskRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	ledger   usecase.PointsGranter
	badges   usecase.BadgeEvaluator
	activity usecase.ActivityLogger
	notifier usecase.Notifier
	cache    repository.RankingCache
	now      func() time.Time
	logger   *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = usecase.NopNotifier
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &UseCase{
		tasks:    deps.Tasks,
		comments: deps.Comments,
		users:    deps.Users,
		ledger:   deps.Ledger,
		badges:   deps.Badges,
		activity: deps.Activity,
		notifier: deps.Notifier,
		cache:    deps.Cache,
		now:      deps.Clock,
		logger:   logger,
	}
}

type CreateInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Priority    domain.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *int64          `json:"assignee_id" validate:"omitempty,gt=0"`
	DueDate     *time.Time      `json:"due_date"`
	SortOrder   int             `json:"sort_order" validate:"gte=0"`
}

// FieldsInput is a partial update. Nil fields are left unchanged.
type FieldsInput struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Priority      *domain.Priority `json:"priority"`
	AssigneeID    *int64           `json:"assignee_id"`
	ClearAssignee bool             `json:"clear_assignee"`
	DueDate       *time.Time       `json:"due_date"`
	ClearDueDate  bool             `json:"clear_due_date"`
	SortOrder     *int             `json:"sort_order"`
}

// StatusChange reports the outcome of a status transition. Warnings list
// secondary effects that failed after the status was committed.
type StatusChange struct {
	Task          *domain.Task      `json:"task"`
	From          domain.TaskStatus `json:"from"`
	Changed       bool              `json:"changed"`
	PointsGranted int               `json:"points_granted"`
	AssigneeTotal *int              `json:"assignee_total,omitempty"`
	NewBadges     []domain.Badge    `json:"new_badges"`
	Warnings      []string          `json:"-"`
}

func (uc *UseCase) GetTask(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load task", err)
	}
	return task, nil
}

func (uc *UseCase) ListTasks(ctx context.Context, actor *domain.Actor, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("invalid status %q", filter.Status)
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("list tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, actor *domain.Actor, in CreateInput) (*domain.Task, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := usecase.Validate(in); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if err := uc.ensureUser(ctx, in.AssigneeID); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		CreatorID:   actor.UserID,
		DueDate:     in.DueDate,
		SortOrder:   in.SortOrder,
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, domain.Persistence("create task", err)
	}

	effects := usecase.NewSideEffects(uc.logger.With(zap.Int64("task_id", task.ID)))
	effects.Record("activity_log", uc.activity.Log(ctx, actor.UserID, domain.ActionCreated, domain.EntityTask, &task.ID,
		fmt.Sprintf(`Created task "%s"`, task.Title)))
	if task.AssigneeID != nil {
		effects.Record("notification", uc.notifier.Notify(ctx, assignedNotification(task, uc.now())))
	}
	return task, nil
}

func (uc *UseCase) UpdateFields(ctx context.Context, actor *domain.Actor, id int64, in FieldsInput) (*domain.Task, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validateFields(&in); err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load task", err)
	}

	previousAssignee := task.AssigneeID
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	switch {
	case in.ClearAssignee:
		task.AssigneeID = nil
	case in.AssigneeID != nil:
		if err := uc.ensureUser(ctx, in.AssigneeID); err != nil {
			return nil, err
		}
		assignee := *in.AssigneeID
		task.AssigneeID = &assignee
	}
	switch {
	case in.ClearDueDate:
		task.DueDate = nil
	case in.DueDate != nil:
		due := *in.DueDate
		task.DueDate = &due
	}
	if in.SortOrder != nil {
		task.SortOrder = *in.SortOrder
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, domain.Persistence("update task", err)
	}

	effects := usecase.NewSideEffects(uc.logger.With(zap.Int64("task_id", task.ID)))
	effects.Record("activity_log", uc.activity.Log(ctx, actor.UserID, domain.ActionUpdated, domain.EntityTask, &task.ID,
		fmt.Sprintf(`Updated task "%s"`, task.Title)))
	if task.AssigneeID != nil && !sameUser(previousAssignee, task.AssigneeID) {
		effects.Record("notification", uc.notifier.Notify(ctx, assignedNotification(task, uc.now())))
	}
	return task, nil
}

// UpdateStatus moves a task to status. Only the assignee or an admin may do
// so. Entering completed commits the status first, then grants points to
// the assignee, evaluates badges and records the activity, in that order.
// Leaving completed clears the award on the task but keeps the ledger.
func (uc *UseCase) UpdateStatus(ctx context.Context, actor *domain.Actor, id int64, status domain.TaskStatus) (*StatusChange, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Invalid("invalid status %q", status)
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load task", err)
	}
	if !actor.IsAdmin() && !task.IsAssignee(actor.UserID) {
		return nil, domain.ErrForbidden
	}

	from := task.Status
	change := &StatusChange{Task: task, From: from}
	if from == status {
		return change, nil
	}

	completed, err := task.Transition(status, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.UpdateStatus(ctx, task, from); err != nil {
		return nil, domain.Persistence("update task status", err)
	}
	change.Changed = true
	metrics.StatusTransitions.WithLabelValues(string(status)).Inc()

	log := uc.logger.With(zap.Int64("task_id", task.ID), zap.String("from", string(from)), zap.String("to", string(status)))
	effects := usecase.NewSideEffects(log)

	if completed && task.AssigneeID != nil {
		assignee := *task.AssigneeID
		entry, total, err := uc.ledger.Grant(ctx, assignee, task.PointsAwarded, task.CompletionReason(), &task.ID)
		if effects.Record("points_grant", err) {
			change.PointsGranted = entry.Delta
			change.AssigneeTotal = &total
			effects.Record("notification", uc.notifier.Notify(ctx, domain.Notification{
				UserID:    assignee,
				Kind:      domain.NotifyPointsAwarded,
				Title:     "Points awarded",
				Body:      fmt.Sprintf(`You earned %d points for completing "%s"`, entry.Delta, task.Title),
				CreatedAt: uc.now(),
			}))
		}

		// Badges awarded before a failure still count.
		badges, err := uc.badges.Evaluate(ctx, assignee)
		effects.Record("badge_evaluation", err)
		change.NewBadges = badges
	}

	effects.Record("activity_log", uc.activity.Log(ctx, actor.UserID, domain.ActionStatusChanged, domain.EntityTask, &task.ID,
		fmt.Sprintf(`Moved task "%s" from %s to %s`, task.Title, from, status)))
	for _, b := range change.NewBadges {
		badgeID := b.ID
		effects.Record("activity_log", uc.activity.Log(ctx, *task.AssigneeID, domain.ActionEarnedBadge, domain.EntityBadge, &badgeID,
			fmt.Sprintf(`Earned badge "%s"`, b.Name)))
		effects.Record("notification", uc.notifier.Notify(ctx, domain.Notification{
			UserID:    *task.AssigneeID,
			Kind:      domain.NotifyBadgeEarned,
			Title:     "New badge earned",
			Body:      fmt.Sprintf("You earned the %s badge: %s", b.Name, b.Description),
			CreatedAt: uc.now(),
		}))
	}

	// Completion counts feed the ranking even when no points moved.
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			log.Warn("ranking cache invalidation failed", zap.Error(err))
		}
	}

	change.Warnings = effects.Warnings()
	log.Info("task status changed", zap.Int("points", change.PointsGranted), zap.Int("warnings", len(change.Warnings)))
	return change, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, actor *domain.Actor, id int64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return domain.Persistence("load task", err)
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return domain.Persistence("delete task", err)
	}

	effects := usecase.NewSideEffects(uc.logger.With(zap.Int64("task_id", id)))
	effects.Record("activity_log", uc.activity.Log(ctx, actor.UserID, domain.ActionDeleted, domain.EntityTask, &id,
		fmt.Sprintf(`Deleted task "%s"`, task.Title)))
	return nil
}

func (uc *UseCase) ensureUser(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := uc.users.GetByID(ctx, *id); err != nil {
		return domain.Persistence("load assignee", err)
	}
	return nil
}

func validateFields(in *FieldsInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > 200 {
			return domain.Invalid("title must be between 1 and 200 characters")
		}
		in.Title = &title
	}
	if in.Description != nil && len(*in.Description) > 5000 {
		return domain.Invalid("description must be at most 5000 characters")
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return domain.Invalid("invalid priority %q", *in.Priority)
	}
	if in.AssigneeID != nil && *in.AssigneeID <= 0 {
		return domain.Invalid("invalid assignee id")
	}
	if in.SortOrder != nil && *in.SortOrder < 0 {
		return domain.Invalid("sort order must not be negative")
	}
	return nil
}

func sameUser(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func assignedNotification(task *domain.Task, now time.Time) domain.Notification {
	body := fmt.Sprintf(`You were assigned "%s" (%s priority)`, task.Title, task.Priority)
	if task.DueDate != nil {
		body += ", due " + task.DueDate.Format(time.RFC1123)
	}
	return domain.Notification{
		UserID:    *task.AssigneeID,
		Kind:      domain.NotifyTaskAssigned,
		Title:     "New task assigned",
		Body:      body,
		CreatedAt: now,
	}
}
