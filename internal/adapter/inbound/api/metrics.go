package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the API server.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ConnectionTests *prometheus.CounterVec
}

// NewMetrics creates a registry and registers all metrics on it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "assuredesk",
				Name:      "requests_total",
				Help:      "Total number of API requests processed",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "assuredesk",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		ConnectionTests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "assuredesk",
				Name:      "connection_tests_total",
				Help:      "Total connectivity tests by result",
			},
			[]string{"result"},
		),
	}
}

// Registry exposes the underlying registry for gathering in tests and
// for wiring extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSessions registers an active-sessions gauge read from the store
// on every scrape. Sessions reaped by expiry are reflected without any
// bookkeeping on the login and logout paths.
func (m *Metrics) ObserveSessions(sessions SessionCounter) {
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "assuredesk",
			Name:      "active_sessions",
			Help:      "Number of active console sessions",
		},
		func() float64 { return float64(sessions.Size()) },
	)
}

// metricsHandler serves the Prometheus exposition endpoint. Without a
// metrics collection configured it answers 404.
func (h *Handler) metricsHandler() http.Handler {
	if h.metrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})
}
