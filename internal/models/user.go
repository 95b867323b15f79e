package models

import "time"

// Role represents the access levels understood by the authorization pipeline.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleViewer  Role = "viewer"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleViewer:
		return true
	}
	return false
}

// Satisfies implements the capability containment used for authorization.
// Admin satisfies every requirement and manager additionally covers user;
// all other combinations must match exactly. The hierarchy is deliberately
// not a total order: viewer is never implied by anything.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	switch r {
	case RoleAdmin:
		return true
	case RoleManager:
		return required == RoleUser
	}
	return false
}

// User is an application account stored in the users table. It extends the
// base record shape with identity and credential columns.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Role         Role      `db:"role" json:"role"`
	Position     string    `db:"position" json:"position"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedBy    int64     `db:"created_by" json:"created_by"`
	UpdatedBy    int64     `db:"updated_by" json:"updated_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SessionUser is the identity projection held server-side for the lifetime
// of a session and attached read-only to each authenticated request.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Position string `json:"position"`
	IsActive bool   `json:"is_active"`
}

// Complete reports whether the session carries the fields every request
// depends on. A stored session missing any of them is treated as corrupted.
func (u *SessionUser) Complete() bool {
	return u != nil && u.ID > 0 && u.Username != "" && u.Role.Valid()
}

// SessionUserFromUser projects an account into its session shape.
func SessionUserFromUser(u *User) *SessionUser {
	return &SessionUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Position: u.Position,
		IsActive: u.IsActive,
	}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *Role
	IsActive *bool
	Search   string
	Options  QueryOptions
}
