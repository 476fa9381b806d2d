// Package session manages bearer-token sessions for the console API.
package session

import (
	"time"

	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
)

// Session tracks an authenticated user's context across API requests.
type Session struct {
	// Token is a cryptographically random identifier, 32 bytes hex-encoded.
	// Presented by clients as a bearer token.
	Token string
	// UserID references the auth.User this session belongs to.
	UserID string
	// Email is cached from the user for request logging.
	Email string
	// Role is cached from the user for authorization checks.
	Role auth.Role
	// CreatedAt is when the session was created (UTC).
	CreatedAt time.Time
	// ExpiresAt is when the session will expire (UTC).
	ExpiresAt time.Time
	// LastAccess is the last time the session was used (UTC).
	LastAccess time.Time
}

// IsExpired checks if the session has exceeded its timeout.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// Refresh updates LastAccess and extends ExpiresAt by the given duration.
func (s *Session) Refresh(timeout time.Duration) {
	now := time.Now().UTC()
	s.LastAccess = now
	s.ExpiresAt = now.Add(timeout)
}
