package service

import (
	"context"
	"fmt"

	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

// Stats is a point-in-time snapshot of the data the dashboard charts.
type Stats struct {
	TotalApplications int            `json:"totalApplications"`
	TotalConnections  int            `json:"totalConnections"`
	ByStatus          map[string]int `json:"byStatus"`
	ByType            map[string]int `json:"byType"`
}

// StatsService aggregates counts over the application and connection
// stores. Every valid status and type appears in the maps, zero-valued
// when absent, so chart axes stay stable.
type StatsService struct {
	applications assurance.Store
	connections  connection.Store
}

// NewStatsService creates a new StatsService.
func NewStatsService(applications assurance.Store, connections connection.Store) *StatsService {
	return &StatsService{
		applications: applications,
		connections:  connections,
	}
}

// Snapshot computes the current statistics.
func (s *StatsService) Snapshot(ctx context.Context) (*Stats, error) {
	apps, err := s.applications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	conns, err := s.connections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	stats := &Stats{
		TotalApplications: len(apps),
		TotalConnections:  len(conns),
		ByStatus:          make(map[string]int, len(assurance.Statuses)),
		ByType:            make(map[string]int, len(assurance.Types)),
	}
	for _, status := range assurance.Statuses {
		stats.ByStatus[string(status)] = 0
	}
	for _, typ := range assurance.Types {
		stats.ByType[string(typ)] = 0
	}
	for _, app := range apps {
		stats.ByStatus[string(app.Status)]++
		stats.ByType[string(app.Type)]++
	}
	return stats, nil
}
