package service

import (
	"context"
	"log/slog"

	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
)

// ApplicationService exposes read access to assurance applications. The
// API surface is read-only; applications enter the store through seeding
// or imports.
type ApplicationService struct {
	store  assurance.Store
	logger *slog.Logger
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(store assurance.Store, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		store:  store,
		logger: logger,
	}
}

// List returns all applications, newest first.
func (s *ApplicationService) List(ctx context.Context) ([]assurance.Application, error) {
	return s.store.List(ctx)
}

// Get returns a single application by ID.
// Returns assurance.ErrApplicationNotFound if it does not exist.
func (s *ApplicationService) Get(ctx context.Context, id string) (*assurance.Application, error) {
	return s.store.Get(ctx, id)
}
