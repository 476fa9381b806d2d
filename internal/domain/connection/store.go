package connection

import (
	"context"
	"errors"
)

// Store provides connection persistence.
// Implementations: in-memory (dev/test), SQLite (durable).
type Store interface {
	// List returns all connections, ordered by name.
	List(ctx context.Context) ([]Connection, error)

	// Get retrieves a connection by ID.
	// Returns ErrConnectionNotFound if no connection matches.
	Get(ctx context.Context, id string) (*Connection, error)

	// Create stores a new connection.
	Create(ctx context.Context, conn *Connection) error

	// Update saves changes to an existing connection.
	// Returns ErrConnectionNotFound if no connection matches.
	Update(ctx context.Context, conn *Connection) error
}

// ErrConnectionNotFound is returned when a connection doesn't exist.
var ErrConnectionNotFound = errors.New("connection not found")
