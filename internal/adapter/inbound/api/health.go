package api

import (
	"context"
	"net/http"
	"runtime"
	"time"
)

// SessionCounter reports how many sessions a store currently holds.
type SessionCounter interface {
	Size() int
}

// Pinger verifies a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Version   string            `json:"version,omitempty"`
	GoVersion string            `json:"goVersion"`
	UptimeSec int64             `json:"uptimeSec"`
}

// HealthChecker verifies component health. Nil components are reported as
// not configured, never as failures.
type HealthChecker struct {
	sessions  SessionCounter
	store     Pinger
	version   string
	startTime time.Time
}

// NewHealthChecker creates a HealthChecker.
func NewHealthChecker(sessions SessionCounter, store Pinger, version string) *HealthChecker {
	return &HealthChecker{
		sessions:  sessions,
		store:     store,
		version:   version,
		startTime: time.Now().UTC(),
	}
}

// Check performs health checks on all configured components.
func (c *HealthChecker) Check(ctx context.Context) HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if c.sessions != nil {
		_ = c.sessions.Size()
		checks["sessions"] = "ok"
	} else {
		checks["sessions"] = "not configured"
	}

	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			checks["store"] = "unreachable: " + err.Error()
			healthy = false
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "in-memory"
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return HealthResponse{
		Status:    status,
		Checks:    checks,
		Version:   c.version,
		GoVersion: runtime.Version(),
		UptimeSec: int64(time.Since(c.startTime).Seconds()),
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		h.respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", GoVersion: runtime.Version()})
		return
	}

	resp := h.health.Check(r.Context())
	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	h.respondJSON(w, status, resp)
}
