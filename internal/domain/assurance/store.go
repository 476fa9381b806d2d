package assurance

import (
	"context"
	"errors"
)

// Store provides application persistence.
// Implementations: in-memory (dev/test), SQLite (durable).
type Store interface {
	// List returns all applications, newest first.
	List(ctx context.Context) ([]Application, error)

	// Get retrieves an application by ID, including its documents.
	// Returns ErrApplicationNotFound if no application matches.
	Get(ctx context.Context, id string) (*Application, error)

	// Put stores an application, replacing any existing record with the
	// same ID. Used by seeding and imports; the API never mutates
	// applications.
	Put(ctx context.Context, app *Application) error
}

// ErrApplicationNotFound is returned when an application doesn't exist.
var ErrApplicationNotFound = errors.New("application not found")
