package points

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/usecase/activity"
	"github.com/fastygo/teamboard/usecase/badge"
)

func newUser(t *testing.T, store *memory.Store, email string, role domain.Role) *domain.Actor {
	t.Helper()
	u := &domain.User{Name: email, Email: email, Role: role}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return &domain.Actor{UserID: u.ID, Role: role}
}

func TestLedger_TotalMatchesSumOfEntries(t *testing.T) {
	store := memory.New()
	ledger := NewLedger(store.Points(), store.RankingCache(), nil)
	user := newUser(t, store, "sum@example.com", domain.RoleUser)
	ctx := context.Background()

	deltas := []int{10, 25, -7, 5, -30, 100}
	var total int
	for _, d := range deltas {
		_, got, err := ledger.Grant(ctx, user.UserID, d, "adjustment", nil)
		require.NoError(t, err)
		total = got
	}

	log := store.PointsLog(user.UserID)
	require.Len(t, log, len(deltas))
	assert.Equal(t, domain.SumPoints(log), total)
	assert.Equal(t, 103, total)

	cached, err := ledger.Total(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, total, cached)
}

func TestLedger_RejectsInvalidGrants(t *testing.T) {
	store := memory.New()
	ledger := NewLedger(store.Points(), nil, nil)
	user := newUser(t, store, "bad@example.com", domain.RoleUser)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		delta  int
		reason string
	}{
		{"zero delta", user.UserID, 0, "nothing"},
		{"blank reason", user.UserID, 5, "   "},
		{"missing user id", 0, 5, "bonus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ledger.Grant(ctx, tt.userID, tt.delta, tt.reason, nil)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "got %v", err)
		})
	}
	assert.Empty(t, store.PointsLog(user.UserID))

	_, _, err := ledger.Grant(ctx, 9999, 5, "ghost", nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLedger_GrantInvalidatesRanking(t *testing.T) {
	store := memory.New()
	ledger := NewLedger(store.Points(), store.RankingCache(), nil)
	user := newUser(t, store, "rank@example.com", domain.RoleUser)
	ctx := context.Background()

	require.NoError(t, store.RankingCache().Set(ctx, []domain.RankingEntry{{UserID: user.UserID}}))
	_, _, err := ledger.Grant(ctx, user.UserID, 3, "bonus", nil)
	require.NoError(t, err)

	_, ok, err := store.RankingCache().Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_HistoryNewestFirst(t *testing.T) {
	store := memory.New()
	ledger := NewLedger(store.Points(), nil, nil)
	user := newUser(t, store, "hist@example.com", domain.RoleUser)
	ctx := context.Background()

	for _, reason := range []string{"first", "second", "third"} {
		_, _, err := ledger.Grant(ctx, user.UserID, 1, reason, nil)
		require.NoError(t, err)
	}

	entries, err := ledger.History(ctx, user.UserID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Reason)
	assert.Equal(t, "second", entries[1].Reason)
}

func newAdjustUseCase(t *testing.T, store *memory.Store) *UseCase {
	t.Helper()
	evaluator := badge.New(store.Badges(), store.Stats(), nil)
	_, err := evaluator.EnsureCatalog(context.Background())
	require.NoError(t, err)
	return New(NewLedger(store.Points(), store.RankingCache(), nil), evaluator, activity.New(store.Activity(), nil), nil, nil)
}

func TestAdjust_AwardsPointBadges(t *testing.T) {
	store := memory.New()
	uc := newAdjustUseCase(t, store)
	admin := newUser(t, store, "admin@example.com", domain.RoleAdmin)
	member := newUser(t, store, "member@example.com", domain.RoleUser)
	ctx := context.Background()

	result, err := uc.Adjust(ctx, admin, AdjustInput{UserID: member.UserID, Amount: 120, Reason: " Hackathon win "})
	require.NoError(t, err)
	assert.Equal(t, 120, result.Total)
	assert.Equal(t, "Hackathon win", result.Entry.Reason)
	assert.Nil(t, result.Entry.TaskID)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "Point Collector", result.NewBadges[0].Name)
	assert.Empty(t, result.Warnings)

	entries, err := store.Activity().List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	var actions []domain.Action
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []domain.Action{domain.ActionUpdated, domain.ActionEarnedBadge}, actions)

	// Deductions are entries too; the badge stays.
	result, err = uc.Adjust(ctx, admin, AdjustInput{UserID: member.UserID, Amount: -50, Reason: "Correction"})
	require.NoError(t, err)
	assert.Equal(t, 70, result.Total)
	assert.Empty(t, result.NewBadges)
	assert.Equal(t, 1, store.UserBadgeCount(member.UserID))
}

func TestAdjust_Authorization(t *testing.T) {
	store := memory.New()
	uc := newAdjustUseCase(t, store)
	member := newUser(t, store, "self@example.com", domain.RoleUser)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, member, AdjustInput{UserID: member.UserID, Amount: 1000, Reason: "please"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Adjust(ctx, nil, AdjustInput{UserID: member.UserID, Amount: 1, Reason: "anon"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Empty(t, store.PointsLog(member.UserID))
}

func TestAdjust_Validation(t *testing.T) {
	store := memory.New()
	uc := newAdjustUseCase(t, store)
	admin := newUser(t, store, "boss@example.com", domain.RoleAdmin)

	_, err := uc.Adjust(context.Background(), admin, AdjustInput{UserID: admin.UserID, Amount: 0, Reason: "zero"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Adjust(context.Background(), admin, AdjustInput{UserID: admin.UserID, Amount: 5})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
