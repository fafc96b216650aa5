package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository/memory"
)

func TestGetProfile(t *testing.T) {
	store := memory.New()
	uc := New(store.Users(), store.Badges(), store.Points(), nil)
	ctx := context.Background()

	u := &domain.User{Name: "Fay", Email: "fay@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users().Create(ctx, u))
	for i := 0; i < RecentPointsLimit+5; i++ {
		_, err := store.Points().Grant(ctx, &domain.PointsLogEntry{UserID: u.ID, Delta: 1, Reason: "tick"})
		require.NoError(t, err)
	}

	profile, err := uc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RecentPointsLimit+5, profile.User.TotalPoints)
	assert.Len(t, profile.RecentPoints, RecentPointsLimit)
	assert.NotNil(t, profile.Badges)

	_, err = uc.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateProfile_OnlyNameAndPhone(t *testing.T) {
	store := memory.New()
	uc := New(store.Users(), store.Badges(), store.Points(), nil)
	ctx := context.Background()

	u := &domain.User{Name: "Gus", Email: "gus@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users().Create(ctx, u))
	_, err := store.Points().Grant(ctx, &domain.PointsLogEntry{UserID: u.ID, Delta: 40, Reason: "seed"})
	require.NoError(t, err)

	phone := "+1 555 0100"
	actor := &domain.Actor{UserID: u.ID, Role: domain.RoleUser}
	updated, err := uc.UpdateProfile(ctx, actor, UpdateInput{Name: " Gustav ", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Gustav", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	stored, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gustav", stored.Name)
	assert.Equal(t, "gus@example.com", stored.Email)
	assert.Equal(t, 40, stored.TotalPoints)

	_, err = uc.UpdateProfile(ctx, actor, UpdateInput{Name: ""})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.UpdateProfile(ctx, nil, UpdateInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
