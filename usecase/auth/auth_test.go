package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository/memory"
)

func newAuth(t *testing.T) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	tokens := NewTokenIssuer("test-secret", "teamboard-test", time.Hour)
	uc := New(store.Users(), store.Sessions(), tokens, Options{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}, nil)
	return uc, store
}

func register(t *testing.T, uc *UseCase, email string) *domain.User {
	t.Helper()
	user, err := uc.Register(context.Background(), RegisterInput{Name: "Erin", Email: email, Password: "correct horse"})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	uc, _ := newAuth(t)

	user := register(t, uc, "  Erin@Example.com ")
	assert.Equal(t, "erin@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Zero(t, user.TotalPoints)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.True(t, CheckPassword(user.PasswordHash, "correct horse"))

	_, err := uc.Register(context.Background(), RegisterInput{Name: "Dup", Email: "erin@example.com", Password: "another pass"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = uc.Register(context.Background(), RegisterInput{Name: "Short", Email: "short@example.com", Password: "123"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Register(context.Background(), RegisterInput{Name: "Bad", Email: "not-an-email", Password: "long enough"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestLoginAndAuthenticate(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	user := register(t, uc, "erin@example.com")

	login, err := uc.Login(ctx, LoginInput{Email: "ERIN@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)

	actor, err := uc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, domain.RoleUser, actor.Role)

	_, err = uc.Login(ctx, LoginInput{Email: "erin@example.com", Password: "wrong horse"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	register(t, uc, "erin@example.com")

	login, err := uc.Login(ctx, LoginInput{Email: "erin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, login.Token))
	_, err = uc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshExtendsSession(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()
	register(t, uc, "erin@example.com")

	start := time.Now()
	uc.now = func() time.Time { return start }
	login, err := uc.Login(ctx, LoginInput{Email: "erin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	later := start.Add(30 * time.Minute)
	uc.now = func() time.Time { return later }
	store.SetClock(func() time.Time { return later })

	refreshed, err := uc.Refresh(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, later.Add(time.Hour), refreshed.Session.ExpiresAt)

	session, err := store.Sessions().Get(ctx, login.Session.ID)
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.After(login.Session.ExpiresAt))
}

func TestEnsureAdmin(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	admin, created, err := uc.EnsureAdmin(ctx, "root@example.com", "super secret", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)

	again, created, err := uc.EnsureAdmin(ctx, "root@example.com", "super secret", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", "teamboard", time.Hour)
	now := time.Now()
	session := &domain.Session{ID: "sid-1", UserID: 42, Role: domain.RoleAdmin, ExpiresAt: now.Add(10 * time.Minute)}

	token, expires, err := issuer.Issue(session, now)
	require.NoError(t, err)
	// The token never outlives its session.
	assert.Equal(t, session.ExpiresAt, expires)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "sid-1", claims.SessionID)

	_, err = NewTokenIssuer("other", "teamboard", time.Hour).Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = NewTokenIssuer("secret", "someone-else", time.Hour).Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "", time.Minute)
	past := time.Now().Add(-time.Hour)
	session := &domain.Session{ID: "sid", UserID: 1, Role: domain.RoleUser, ExpiresAt: past.Add(time.Hour * 24)}

	token, _, err := issuer.Issue(session, past)
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
