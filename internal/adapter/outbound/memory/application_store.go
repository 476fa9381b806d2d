package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
)

// ApplicationStore implements assurance.Store with an in-memory map.
// Thread-safe for concurrent access.
type ApplicationStore struct {
	applications map[string]*assurance.Application
	mu           sync.RWMutex
}

// NewApplicationStore creates a new in-memory application store.
func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{
		applications: make(map[string]*assurance.Application),
	}
}

// List returns all applications, newest first.
func (s *ApplicationStore) List(ctx context.Context) ([]assurance.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]assurance.Application, 0, len(s.applications))
	for _, app := range s.applications {
		result = append(result, copyApplication(app))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Get retrieves an application by ID, including its documents.
func (s *ApplicationStore) Get(ctx context.Context, id string) (*assurance.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return nil, assurance.ErrApplicationNotFound
	}

	appCopy := copyApplication(app)
	return &appCopy, nil
}

// Put stores an application, replacing any existing record with the same ID.
func (s *ApplicationStore) Put(ctx context.Context, app *assurance.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appCopy := copyApplication(app)
	s.applications[app.ID] = &appCopy
	return nil
}

// copyApplication deep-copies an application so stored records can't be
// mutated through returned slices.
func copyApplication(app *assurance.Application) assurance.Application {
	appCopy := *app
	if app.Documents != nil {
		appCopy.Documents = make([]assurance.Document, len(app.Documents))
		copy(appCopy.Documents, app.Documents)
	}
	return appCopy
}

// Compile-time interface verification.
var _ assurance.Store = (*ApplicationStore)(nil)
