package domain

import "time"

// Role describes the privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a team member. TotalPoints is a cached sum of the
// user's points log and is only ever changed by a ledger grant.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	TotalPoints  int       `json:"total_points"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Actor is the authenticated identity behind a request.
type Actor struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// RequireAdmin fails with Unauthorized for a nil actor and Forbidden for
// a non-admin one.
func (a *Actor) RequireAdmin() error {
	if a == nil || a.UserID == 0 {
		return ErrUnauthorized
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireAuthenticated fails with Unauthorized for a missing actor.
func (a *Actor) RequireAuthenticated() error {
	if a == nil || a.UserID == 0 {
		return ErrUnauthorized
	}
	return nil
}
