package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
)

type Options struct {
	SessionTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *TokenIssuer
	opts     Options
	now      func() time.Time
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens *TokenIssuer, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

type RegisterInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login is the result of a successful sign-in.
type Login struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *domain.Session `json:"session"`
	User      *domain.User    `json:"user"`
}

func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return uc.createUser(ctx, in, domain.RoleUser)
}

// EnsureAdmin creates an admin account for email unless a user with that
// email already exists.
func (uc *UseCase) EnsureAdmin(ctx context.Context, email, password, name string) (*domain.User, bool, error) {
	existing, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, domain.Persistence("load admin", err)
	}
	if name == "" {
		name = "Administrator"
	}
	user, err := uc.createUser(ctx, RegisterInput{Name: name, Email: email, Password: password}, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (uc *UseCase) createUser(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := usecase.Validate(in); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, uc.opts.BcryptCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         role,
		PasswordHash: hash,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, domain.Persistence("create user", err)
	}
	uc.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Login checks credentials, opens a session and issues a token bound to it.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*Login, error) {
	in.Email = normalizeEmail(in.Email)
	if err := usecase.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, domain.Persistence("load user", err)
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return nil, domain.ErrUnauthorized
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.opts.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.Persistence("save session", err)
	}
	token, expires, err := uc.tokens.Issue(session, now)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &Login{Token: token, ExpiresAt: expires, Session: session, User: user}, nil
}

// Authenticate resolves a bearer token to the actor behind it. The token's
// session must still be live.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.liveSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session.Actor(), nil
}

// Refresh extends the session and issues a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, token string) (*Login, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.liveSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, session.ID, uc.opts.SessionTTL); err != nil {
		return nil, domain.Persistence("extend session", err)
	}
	now := uc.now()
	session.ExpiresAt = now.Add(uc.opts.SessionTTL)
	signed, expires, err := uc.tokens.Issue(session, now)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &Login{Token: signed, ExpiresAt: expires, Session: session}, nil
}

func (uc *UseCase) Logout(ctx context.Context, token string) error {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return err
	}
	if err := uc.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Persistence("delete session", err)
	}
	return nil
}

func (uc *UseCase) liveSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, domain.Persistence("load session", err)
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, id)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
