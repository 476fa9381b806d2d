package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Assure-Desk/assuredesk/internal/adapter/inbound/api"
	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/memory"
	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/seed"
	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/sqlite"
	"github.com/Assure-Desk/assuredesk/internal/config"
	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

// dataStores bundles the store ports selected by the configured driver.
type dataStores struct {
	users        auth.UserStore
	connections  connection.Store
	applications assurance.Store

	// pinger is non-nil only for durable stores; the health endpoint
	// reports in-memory stores as trivially reachable.
	pinger api.Pinger
}

func (s *dataStores) seedTargets() seed.Stores {
	return seed.Stores{
		Users:        s.users,
		Connections:  s.connections,
		Applications: s.applications,
	}
}

// openStores builds the store set for the configured driver. The returned
// cleanup releases any underlying resources and is safe to call once.
func openStores(cfg *config.Config, logger *slog.Logger) (*dataStores, func(), error) {
	switch cfg.Store.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		stores := &dataStores{
			users:        db.Users(),
			connections:  db.Connections(),
			applications: db.Applications(),
			pinger:       db,
		}
		return stores, func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close sqlite store", "error", err)
			}
		}, nil

	case "memory":
		stores := &dataStores{
			users:        memory.NewUserStore(),
			connections:  memory.NewConnectionStore(),
			applications: memory.NewApplicationStore(),
		}
		return stores, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
