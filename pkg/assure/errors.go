package assure

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotAuthenticated is returned when an operation requires a session
	// and none is held.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the server rejects the session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServerUnreachable is returned on transport-level failures.
	ErrServerUnreachable = errors.New("server unreachable")
)

// APIError is the base error for non-2xx responses. Message carries the
// server-provided text when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("assure: server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("assure: server returned %d", e.Status)
}

// NotFoundError is returned when an entity lookup misses.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is supports errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AuthError is returned on login failure or session rejection.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return "authentication failed: " + e.Message
	}
	return "authentication failed"
}

// Is supports errors.Is(err, ErrUnauthorized).
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ValidationError is raised client-side before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// TestFailedError is returned when a connection test completes with a
// negative result: the console reached the server, but the probed
// endpoint did not answer.
type TestFailedError struct {
	ID      string
	Message string
}

func (e *TestFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("connection %q test failed: %s", e.ID, e.Message)
	}
	return fmt.Sprintf("connection %q test failed", e.ID)
}

// ConnectionError is returned when the server cannot be reached.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("server unreachable: %v", e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, ErrServerUnreachable).
func (e *ConnectionError) Is(target error) bool {
	return target == ErrServerUnreachable
}
