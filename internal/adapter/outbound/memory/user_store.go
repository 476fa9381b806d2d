package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
)

// UserStore implements auth.UserStore with in-memory maps.
// Thread-safe for concurrent access. For development/testing only.
type UserStore struct {
	byID    map[string]*auth.User
	byEmail map[string]*auth.User // lowercased email -> User
	mu      sync.RWMutex
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*auth.User),
		byEmail: make(map[string]*auth.User),
	}
}

// Create stores a new user.
// Returns auth.ErrDuplicateEmail if the email is already registered.
// Email matching is case-insensitive.
func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return auth.ErrDuplicateEmail
	}

	userCopy := *user
	s.byID[user.ID] = &userCopy
	s.byEmail[email] = &userCopy
	return nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

// Compile-time interface verification.
var _ auth.UserStore = (*UserStore)(nil)
