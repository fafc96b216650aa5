package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/usecase/activity"
	"github.com/fastygo/teamboard/usecase/badge"
	"github.com/fastygo/teamboard/usecase/points"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

type failingPoints struct {
	repository.PointsRepository
}

func (failingPoints) Grant(context.Context, *domain.PointsLogEntry) (int, error) {
	return 0, errors.New("connection reset")
}

type fixture struct {
	store    *memory.Store
	uc       *UseCase
	notifier *recordingNotifier
	admin    *domain.Actor
	alice    *domain.Actor
	bob      *domain.Actor
}

func newFixture(t *testing.T, pointsRepo repository.PointsRepository) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	store.SetClock(func() time.Time { return fixedNow })
	if pointsRepo == nil {
		pointsRepo = store.Points()
	}

	evaluator := badge.New(store.Badges(), store.Stats(), nil)
	_, err := evaluator.EnsureCatalog(ctx)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	uc := New(Deps{
		Tasks:    store.Tasks(),
		Comments: store.Comments(),
		Users:    store.Users(),
		Ledger:   points.NewLedger(pointsRepo, store.RankingCache(), nil),
		Badges:   evaluator,
		Activity: activity.New(store.Activity(), nil),
		Notifier: notifier,
		Cache:    store.RankingCache(),
		Clock:    func() time.Time { return fixedNow },
	}, nil)

	f := &fixture{store: store, uc: uc, notifier: notifier}
	f.admin = f.user(t, "Admin", "admin@example.com", domain.RoleAdmin)
	f.alice = f.user(t, "Alice", "alice@example.com", domain.RoleUser)
	f.bob = f.user(t, "Bob", "bob@example.com", domain.RoleUser)
	return f
}

func (f *fixture) user(t *testing.T, name, email string, role domain.Role) *domain.Actor {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return &domain.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) createTask(t *testing.T, in CreateInput) *domain.Task {
	t.Helper()
	task, err := f.uc.CreateTask(context.Background(), f.admin, in)
	require.NoError(t, err)
	return task
}

func (f *fixture) activity(t *testing.T, action domain.Action) []domain.ActivityLogEntry {
	t.Helper()
	entries, err := f.store.Activity().List(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	var out []domain.ActivityLogEntry
	for _, e := range entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) total(t *testing.T, userID int64) int {
	t.Helper()
	total, err := f.store.Points().Total(context.Background(), userID)
	require.NoError(t, err)
	return total
}

func TestCreateTask_Defaults(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID

	task := f.createTask(t, CreateInput{Title: "  Write docs  ", AssigneeID: &assignee})

	assert.NotZero(t, task.ID)
	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, f.admin.UserID, task.CreatorID)
	assert.Len(t, f.activity(t, domain.ActionCreated), 1)
	assert.Equal(t, []domain.NotificationKind{domain.NotifyTaskAssigned}, f.notifier.kinds())
}

func TestCreateTask_RequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.CreateTask(context.Background(), f.alice, CreateInput{Title: "Nope"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.CreateTask(context.Background(), nil, CreateInput{Title: "Nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t, nil)
	missing := int64(9999)

	_, err := f.uc.CreateTask(context.Background(), f.admin, CreateInput{Title: "   "})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateTask(context.Background(), f.admin, CreateInput{Title: "x", Priority: "critical"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateTask(context.Background(), f.admin, CreateInput{Title: "x", AssigneeID: &missing})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateStatus_ShipReportOnTime(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID
	due := fixedNow.Add(24 * time.Hour)
	task := f.createTask(t, CreateInput{Title: "Ship report", Priority: domain.PriorityHigh, AssigneeID: &assignee, DueDate: &due})
	before := f.total(t, assignee)

	change, err := f.uc.UpdateStatus(context.Background(), f.alice, task.ID, domain.StatusCompleted)
	require.NoError(t, err)

	assert.True(t, change.Changed)
	assert.Empty(t, change.Warnings)
	assert.Equal(t, domain.StatusPending, change.From)
	assert.Equal(t, 25, change.PointsGranted)
	require.NotNil(t, change.AssigneeTotal)
	assert.Equal(t, before+25, *change.AssigneeTotal)
	assert.Equal(t, before+25, f.total(t, assignee))

	stored, err := f.store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, 25, stored.PointsAwarded)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, fixedNow, *stored.CompletedAt)

	log := f.store.PointsLog(assignee)
	require.Len(t, log, 1)
	assert.Equal(t, `Completed task "Ship report"`, log[0].Reason)
	require.NotNil(t, log[0].TaskID)
	assert.Equal(t, task.ID, *log[0].TaskID)

	assert.Len(t, f.activity(t, domain.ActionStatusChanged), 1)

	// First completion earns First Steps.
	require.Len(t, change.NewBadges, 1)
	assert.Equal(t, "First Steps", change.NewBadges[0].Name)
	earned := f.activity(t, domain.ActionEarnedBadge)
	require.Len(t, earned, 1)
	assert.Equal(t, assignee, earned[0].UserID)
	assert.Contains(t, f.notifier.kinds(), domain.NotifyPointsAwarded)
	assert.Contains(t, f.notifier.kinds(), domain.NotifyBadgeEarned)
}

func TestUpdateStatus_UrgentWithoutDueDate(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID
	task := f.createTask(t, CreateInput{Title: "Hotfix", Priority: domain.PriorityUrgent, AssigneeID: &assignee})

	change, err := f.uc.UpdateStatus(context.Background(), f.admin, task.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 35, change.PointsGranted)
	assert.Equal(t, 35, f.total(t, assignee))
}

func TestUpdateStatus_LateLowPriority(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID
	due := fixedNow.Add(-48 * time.Hour)
	task := f.createTask(t, CreateInput{Title: "Old chore", Priority: domain.PriorityLow, AssigneeID: &assignee, DueDate: &due})

	change, err := f.uc.UpdateStatus(context.Background(), f.alice, task.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 5, change.PointsGranted)
}

func TestUpdateStatus_NonAssigneeForbidden(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID
	task := f.createTask(t, CreateInput{Title: "Mine", AssigneeID: &assignee})

	_, err := f.uc.UpdateStatus(context.Background(), f.bob, task.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Nil(t, stored.CompletedAt)
	assert.Empty(t, f.store.PointsLog(assignee))
	assert.Empty(t, f.activity(t, domain.ActionStatusChanged))
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t, nil)
	task := f.createTask(t, CreateInput{Title: "Any"})

	_, err := f.uc.UpdateStatus(context.Background(), f.admin, task.ID, domain.TaskStatus("archived"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.UpdateStatus(context.Background(), f.admin, 424242, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	task := f.createTask(t, CreateInput{Title: "Idle"})

	change, err := f.uc.UpdateStatus(context.Background(), f.admin, task.ID, domain.StatusPending)
	require.NoError(t, err)
	assert.False(t, change.Changed)
	assert.Empty(t, f.activity(t, domain.ActionStatusChanged))
}

func TestUpdateStatus_ReversalKeepsLedger(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID
	task := f.createTask(t, CreateInput{Title: "Flip", Priority: domain.PriorityMedium, AssigneeID: &assignee})

	_, err := f.uc.UpdateStatus(context.Background(), f.alice, task.ID, domain.StatusCompleted)
	require.NoError(t, err)

	change, err := f.uc.UpdateStatus(context.Background(), f.alice, task.ID, domain.StatusPending)
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Zero(t, change.PointsGranted)

	stored, err := f.store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedAt)
	assert.Zero(t, stored.PointsAwarded)

	assert.Len(t, f.store.PointsLog(assignee), 1)
	assert.Equal(t, 15, f.total(t, assignee))
	assert.Len(t, f.activity(t, domain.ActionStatusChanged), 2)
}

func TestUpdateStatus_UnassignedCompletionGrantsNothing(t *testing.T) {
	f := newFixture(t, nil)
	task := f.createTask(t, CreateInput{Title: "Orphan"})

	change, err := f.uc.UpdateStatus(context.Background(), f.admin, task.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Zero(t, change.PointsGranted)
	assert.Nil(t, change.AssigneeTotal)
	assert.Empty(t, change.NewBadges)
}

func TestUpdateStatus_SecondaryFailureKeepsStatus(t *testing.T) {
	store := memory.New()
	f := newFixture(t, failingPoints{PointsRepository: store.Points()})
	assignee := f.alice.UserID
	task := f.createTask(t, CreateInput{Title: "Fragile", AssigneeID: &assignee})

	change, err := f.uc.UpdateStatus(context.Background(), f.alice, task.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Zero(t, change.PointsGranted)
	require.NotEmpty(t, change.Warnings)
	assert.Contains(t, change.Warnings[0], "points_grant")

	stored, err := f.store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Len(t, f.activity(t, domain.ActionStatusChanged), 1)

	// Badges are still evaluated against the committed completion.
	require.Len(t, change.NewBadges, 1)
	assert.Equal(t, "First Steps", change.NewBadges[0].Name)
}

func TestUpdateStatus_ConcurrentCompletionGrantsOnce(t *testing.T) {
	f := newFixture(t, nil)
	assignee := f.alice.UserID
	task := f.createTask(t, CreateInput{Title: "Race", Priority: domain.PriorityHigh, AssigneeID: &assignee})

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.UpdateStatus(context.Background(), f.alice, task.ID, domain.StatusCompleted)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrTaskConflict)
		}
	}
	assert.Len(t, f.store.PointsLog(assignee), 1)
	assert.Equal(t, 25, f.total(t, assignee))
}

func TestUpdateStatus_InvalidatesRankingCache(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	assignee := f.alice.UserID
	task := f.createTask(t, CreateInput{Title: "Rank", AssigneeID: &assignee})

	require.NoError(t, f.store.RankingCache().Set(ctx, []domain.RankingEntry{{UserID: 1}}))
	_, err := f.uc.UpdateStatus(ctx, f.alice, task.ID, domain.StatusInProgress)
	require.NoError(t, err)

	_, ok, err := f.store.RankingCache().Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateFields_PartialUpdate(t *testing.T) {
	f := newFixture(t, nil)
	due := fixedNow.Add(time.Hour)
	task := f.createTask(t, CreateInput{Title: "Draft", Description: "v1", DueDate: &due})

	title := "Final"
	priority := domain.PriorityUrgent
	assignee := f.bob.UserID
	updated, err := f.uc.UpdateFields(context.Background(), f.admin, task.ID, FieldsInput{
		Title:        &title,
		Priority:     &priority,
		AssigneeID:   &assignee,
		ClearDueDate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "v1", updated.Description)
	assert.Equal(t, domain.PriorityUrgent, updated.Priority)
	assert.Nil(t, updated.DueDate)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, assignee, *updated.AssigneeID)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, []domain.NotificationKind{domain.NotifyTaskAssigned}, f.notifier.kinds())
}

func TestUpdateFields_Validation(t *testing.T) {
	f := newFixture(t, nil)
	task := f.createTask(t, CreateInput{Title: "Keep"})

	empty := " "
	_, err := f.uc.UpdateFields(context.Background(), f.admin, task.ID, FieldsInput{Title: &empty})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	title := "Mine now"
	_, err = f.uc.UpdateFields(context.Background(), f.alice, task.ID, FieldsInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.createTask(t, CreateInput{Title: "Temp"})

	require.NoError(t, f.uc.DeleteTask(ctx, f.admin, task.ID))
	_, err := f.uc.GetTask(ctx, f.alice, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Len(t, f.activity(t, domain.ActionDeleted), 1)

	assert.ErrorIs(t, f.uc.DeleteTask(ctx, f.admin, task.ID), domain.ErrTaskNotFound)
}

func TestListTasks_FiltersByAssignee(t *testing.T) {
	f := newFixture(t, nil)
	alice, bob := f.alice.UserID, f.bob.UserID
	f.createTask(t, CreateInput{Title: "A1", AssigneeID: &alice})
	f.createTask(t, CreateInput{Title: "B1", AssigneeID: &bob})
	f.createTask(t, CreateInput{Title: "A2", AssigneeID: &alice})

	tasks, err := f.uc.ListTasks(context.Background(), f.bob, repository.TaskFilter{AssigneeID: alice})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "A1", tasks[0].Title)
	assert.Equal(t, "A2", tasks[1].Title)

	_, err = f.uc.ListTasks(context.Background(), f.bob, repository.TaskFilter{Status: "done"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
