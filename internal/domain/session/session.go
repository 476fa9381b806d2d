package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
)

// DefaultTimeout is the default session timeout.
const DefaultTimeout = 30 * time.Minute

// Config holds session service configuration.
type Config struct {
	// Timeout is the session expiration duration. Default: 30 minutes.
	Timeout time.Duration
}

// Service manages session lifecycle.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a new session Service with the given store and config.
func NewService(store Store, cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		store:   store,
		timeout: timeout,
	}
}

// Create generates a new session for a user.
func (s *Service) Create(ctx context.Context, user *auth.User) (*Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &Session{
		Token:      token,
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.timeout),
		LastAccess: now,
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Get retrieves a session by token.
// Returns ErrSessionNotFound if the session doesn't exist.
func (s *Service) Get(ctx context.Context, token string) (*Session, error) {
	session, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	// Double-check expiration (store might not enforce it)
	if session.IsExpired() {
		_ = s.store.Delete(ctx, token)
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Refresh extends session expiration and updates last access time.
func (s *Service) Refresh(ctx context.Context, token string) error {
	session, err := s.store.Get(ctx, token)
	if err != nil {
		return err
	}

	if session.IsExpired() {
		_ = s.store.Delete(ctx, token)
		return ErrSessionNotFound
	}

	session.Refresh(s.timeout)

	if err := s.store.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	return nil
}

// Delete terminates a session.
func (s *Service) Delete(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// GenerateToken creates a cryptographically random session token.
// Returns 64 hex characters (32 bytes).
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
