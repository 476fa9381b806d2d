package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

// ConnectionStore implements connection.Store with an in-memory map.
// Thread-safe for concurrent access.
type ConnectionStore struct {
	connections map[string]*connection.Connection
	mu          sync.RWMutex
}

// NewConnectionStore creates a new in-memory connection store.
func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{
		connections: make(map[string]*connection.Connection),
	}
}

// List returns all connections, ordered by name.
func (s *ConnectionStore) List(ctx context.Context) ([]connection.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]connection.Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		result = append(result, *conn)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Get retrieves a connection by ID.
func (s *ConnectionStore) Get(ctx context.Context, id string) (*connection.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[id]
	if !ok {
		return nil, connection.ErrConnectionNotFound
	}

	connCopy := *conn
	return &connCopy, nil
}

// Create stores a new connection.
func (s *ConnectionStore) Create(ctx context.Context, conn *connection.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	connCopy := *conn
	s.connections[conn.ID] = &connCopy
	return nil
}

// Update saves changes to an existing connection.
func (s *ConnectionStore) Update(ctx context.Context, conn *connection.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.connections[conn.ID]; !ok {
		return connection.ErrConnectionNotFound
	}

	connCopy := *conn
	s.connections[conn.ID] = &connCopy
	return nil
}

// Compile-time interface verification.
var _ connection.Store = (*ConnectionStore)(nil)
