// Package api provides the JSON API handlers for the AssureDesk console.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Assure-Desk/assuredesk/internal/domain/session"
	"github.com/Assure-Desk/assuredesk/internal/service"
)

// Default login rate limit: attempts per window per client IP.
const (
	DefaultLoginMaxAttempts = 10
	DefaultLoginWindow      = time.Minute
)

// BuildInfo holds version information reported by the health endpoint.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Handler serves the console's JSON API.
type Handler struct {
	auth         *service.AuthService
	connections  *service.ConnectionService
	applications *service.ApplicationService
	stats        *service.StatsService
	sessions     *session.Service
	metrics      *Metrics
	health       *HealthChecker
	buildInfo    *BuildInfo
	logger       *slog.Logger

	loginMaxAttempts int
	loginWindow      time.Duration
}

// Option configures a Handler dependency.
type Option func(*Handler)

// WithAuthService sets the auth service.
func WithAuthService(s *service.AuthService) Option {
	return func(h *Handler) { h.auth = s }
}

// WithConnectionService sets the connection service.
func WithConnectionService(s *service.ConnectionService) Option {
	return func(h *Handler) { h.connections = s }
}

// WithApplicationService sets the application service.
func WithApplicationService(s *service.ApplicationService) Option {
	return func(h *Handler) { h.applications = s }
}

// WithStatsService sets the stats service.
func WithStatsService(s *service.StatsService) Option {
	return func(h *Handler) { h.stats = s }
}

// WithSessionService sets the session service used by the auth middleware.
func WithSessionService(s *session.Service) Option {
	return func(h *Handler) { h.sessions = s }
}

// WithMetrics sets the Prometheus metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithHealthChecker sets the health checker.
func WithHealthChecker(c *HealthChecker) Option {
	return func(h *Handler) { h.health = c }
}

// WithBuildInfo sets the build version information.
func WithBuildInfo(info *BuildInfo) Option {
	return func(h *Handler) { h.buildInfo = info }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithLoginRateLimit overrides the login rate limit.
func WithLoginRateLimit(maxAttempts int, window time.Duration) Option {
	return func(h *Handler) {
		h.loginMaxAttempts = maxAttempts
		h.loginWindow = window
	}
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		logger:           slog.Default(),
		loginMaxAttempts: DefaultLoginMaxAttempts,
		loginWindow:      DefaultLoginWindow,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns an http.Handler with all API routes registered.
// Auth endpoints are open; everything else under /api requires a bearer
// token. The whole tree carries request IDs, security headers, metrics,
// and tracing.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", h.metricsHandler())

	// Login and register are reachable without a session. Login carries
	// its own per-IP rate limit against credential stuffing.
	mux.Handle("POST /api/auth/login",
		loginRateLimitMiddleware(h.loginMaxAttempts, h.loginWindow, http.HandlerFunc(h.handleLogin)))
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)

	protected := http.NewServeMux()
	protected.HandleFunc("POST /api/auth/logout", h.handleLogout)
	protected.Handle("GET /api/connections", etagMiddleware(http.HandlerFunc(h.handleListConnections)))
	protected.HandleFunc("POST /api/connections", h.handleAddConnection)
	protected.HandleFunc("POST /api/connections/{id}/test", h.handleTestConnection)
	protected.Handle("GET /api/applications", etagMiddleware(http.HandlerFunc(h.handleListApplications)))
	protected.Handle("GET /api/applications/{id}", etagMiddleware(http.HandlerFunc(h.handleGetApplication)))
	protected.HandleFunc("GET /api/stats", h.handleGetStats)
	mux.Handle("/api/", h.authMiddleware(protected))

	var handler http.Handler = mux
	if h.metrics != nil {
		handler = MetricsMiddleware(h.metrics)(handler)
	}
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return securityHeadersMiddleware(handler)
}

// respondJSON writes a JSON response with the given status code and data.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes the error wire shape: {"message": "..."}.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"message": message})
}

// readJSON decodes the request body into v, rejecting unknown fields.
func (h *Handler) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
