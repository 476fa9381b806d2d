package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

// DefaultProbeTimeout bounds a single connectivity probe.
const DefaultProbeTimeout = 5 * time.Second

// Prober checks whether an endpoint URL is reachable.
type Prober interface {
	Probe(ctx context.Context, rawURL string) error
}

// ProbeError wraps a failed connectivity probe. Callers use it to tell a
// negative test result apart from a store failure.
type ProbeError struct {
	Cause error
}

func (e *ProbeError) Error() string { return e.Cause.Error() }

func (e *ProbeError) Unwrap() error { return e.Cause }

// HTTPProber probes endpoints with an HTTP HEAD request. Any response,
// including an error status, counts as reachable; only transport failures
// count as unreachable.
type HTTPProber struct {
	Client *http.Client
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", rawURL, err)
	}
	resp.Body.Close()
	return nil
}

// ConnectionService manages API connections and their connectivity state.
type ConnectionService struct {
	store        connection.Store
	prober       Prober
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewConnectionService creates a new ConnectionService. A zero probeTimeout
// falls back to DefaultProbeTimeout.
func NewConnectionService(store connection.Store, prober Prober, probeTimeout time.Duration, logger *slog.Logger) *ConnectionService {
	if probeTimeout == 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &ConnectionService{
		store:        store,
		prober:       prober,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// List returns all connections sorted by name.
func (s *ConnectionService) List(ctx context.Context) ([]connection.Connection, error) {
	return s.store.List(ctx)
}

// AddInput holds the input for creating a connection.
type AddInput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Add creates a new connection. The server assigns the ID and records the
// connection as freshly connected.
func (s *ConnectionService) Add(ctx context.Context, input AddInput) (*connection.Connection, error) {
	ctx, span := tracer.Start(ctx, "connection.add")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	parsed, err := url.Parse(input.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("a valid absolute url is required")
	}

	now := time.Now().UTC()
	conn := &connection.Connection{
		ID:            uuid.NewString(),
		Name:          name,
		URL:           input.URL,
		Status:        connection.StatusConnected,
		LastConnected: &now,
	}
	if err := s.store.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	s.logger.Info("connection added", "id", conn.ID, "name", name)
	return conn, nil
}

// Test probes the stored URL of a connection and updates its status. It
// returns true when the probe succeeded. A failed probe marks the
// connection as errored and returns a *ProbeError; any other error is a
// store failure.
func (s *ConnectionService) Test(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "connection.test")
	defer span.End()
	span.SetAttributes(attribute.String("connection.id", id))

	conn, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	probeErr := s.prober.Probe(probeCtx, conn.URL)

	if probeErr != nil {
		conn.Status = connection.StatusError
		if err := s.store.Update(ctx, conn); err != nil {
			return false, fmt.Errorf("update connection: %w", err)
		}
		s.logger.Warn("connection test failed", "id", id, "error", probeErr)
		return false, &ProbeError{Cause: probeErr}
	}

	now := time.Now().UTC()
	conn.Status = connection.StatusConnected
	conn.LastConnected = &now
	if err := s.store.Update(ctx, conn); err != nil {
		return false, fmt.Errorf("update connection: %w", err)
	}
	s.logger.Info("connection test succeeded", "id", id)
	return true, nil
}
