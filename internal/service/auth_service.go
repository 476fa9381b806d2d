// Package service contains application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
	"github.com/Assure-Desk/assuredesk/internal/domain/session"
)

var tracer = otel.Tracer("github.com/Assure-Desk/assuredesk/internal/service")

// AuthService errors.
var (
	// ErrInvalidCredentials is returned for any login failure. Wrong email
	// and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles registration, login, and logout against the user
// store and the session service.
type AuthService struct {
	users    auth.UserStore
	sessions *session.Service
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users auth.UserStore, sessions *session.Service, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterInput holds the input for creating a user account.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Register creates a new user with an Argon2id password hash. It does not
// mint a session; the caller logs in separately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*auth.User, error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	role := auth.Role(input.Role)
	if input.Role == "" {
		role = auth.RoleAgent
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", input.Role)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "email", email, "role", role)
	return user, nil
}

// Login verifies the credentials and mints a new session. Any failure,
// unknown email or bad password, returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Session, *auth.User, error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.logger.Warn("login failed", "email", email, "reason", "unknown user")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.logger.Warn("login failed", "email", email, "reason", "bad password")
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.Info("user logged in", "email", email, "user_id", user.ID)
	return sess, user, nil
}

// Logout terminates the session for the given token. Unknown tokens are
// not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "auth.logout")
	defer span.End()

	if err := s.sessions.Delete(ctx, token); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
