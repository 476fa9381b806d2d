// Package auth contains the domain types and logic for authentication.
package auth

import (
	"context"
	"errors"
	"time"
)

// Role represents a user role for authorization purposes.
type Role string

const (
	// RoleAdmin has full access to all operations.
	RoleAdmin Role = "admin"
	// RoleAgent has standard access to applications and connections.
	RoleAgent Role = "agent"
)

// IsValid returns true if the role is a known valid role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent:
		return true
	default:
		return false
	}
}

// User represents a registered console user.
type User struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Email is the login identifier, unique across users.
	Email string `json:"email"`
	// Name is the optional display name.
	Name string `json:"name,omitempty"`
	// Role is the authorization role. Default: agent.
	Role Role `json:"role,omitempty"`
	// PasswordHash is the Argon2id hash in PHC format. Never serialized.
	PasswordHash string `json:"-"`
	// CreatedAt is when the user registered (UTC).
	CreatedAt time.Time `json:"-"`
}

// UserStore provides user persistence.
type UserStore interface {
	// Create stores a new user.
	// Returns ErrDuplicateEmail if the email is already registered.
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by email.
	// Returns ErrUserNotFound if no user matches.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if no user matches.
	GetByID(ctx context.Context, id string) (*User, error)
}

// UserStore errors.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
