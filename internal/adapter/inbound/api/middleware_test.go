package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("expected a generated request ID")
	}
	if got := rec.Header().Get(requestIDHeader); got != seen {
		t.Errorf("response ID = %q, request ID = %q", got, seen)
	}

	// A caller-supplied ID is preserved.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "caller-id" {
		t.Errorf("response ID = %q, want caller-id", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestETagMiddleware(t *testing.T) {
	t.Parallel()

	handler := etagMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"c1"}]`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/connections", nil))
	etag := rec.Header().Get("ETag")
	if etag == "" || !strings.HasPrefix(etag, `"`) {
		t.Fatalf("ETag = %q", etag)
	}
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("first response: %d, %d bytes", rec.Code, rec.Body.Len())
	}

	// Conditional GET with the same fingerprint skips the body.
	req := httptest.NewRequest(http.MethodGet, "/api/connections", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("conditional response = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 carried a body: %q", rec.Body.String())
	}
}

func TestETagMiddlewarePassesErrorsThrough(t *testing.T) {
	t.Parallel()

	handler := etagMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/applications/x", nil)
	req.Header.Set("If-None-Match", `"whatever"`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("error responses must not carry an ETag")
	}
}

func TestLoginRateLimiter(t *testing.T) {
	t.Parallel()

	rl := newLoginRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if ok, _ := rl.allow("10.0.0.1"); !ok {
			t.Fatalf("attempt %d unexpectedly limited", i+1)
		}
	}
	ok, retryAfter := rl.allow("10.0.0.1")
	if ok {
		t.Fatal("fourth attempt should be limited")
	}
	if retryAfter < 1 {
		t.Errorf("retryAfter = %d, want >= 1", retryAfter)
	}

	// A different IP has its own budget.
	if ok, _ := rl.allow("10.0.0.2"); !ok {
		t.Error("separate IP should not be limited")
	}
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	handler := loginRateLimitMiddleware(1, time.Minute, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 must carry Retry-After")
	}
	if !strings.Contains(rec.Body.String(), "message") {
		t.Errorf("429 body = %q", rec.Body.String())
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	t.Parallel()

	// Zero attempts means no limiting at all, not a zero budget.
	handler := loginRateLimitMiddleware(0, time.Minute, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	handler := MetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/api/connections", "/api/connections", "/boom", "/metrics"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	var requests *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "assuredesk_requests_total" {
			requests = mf
		}
	}
	if requests == nil {
		t.Fatal("assuredesk_requests_total not registered")
	}

	counts := make(map[string]float64)
	for _, m := range requests.GetMetric() {
		var status string
		for _, l := range m.GetLabel() {
			if l.GetName() == "status" {
				status = l.GetValue()
			}
		}
		counts[status] += m.GetCounter().GetValue()
	}
	// /metrics itself is excluded from instrumentation.
	if counts["ok"] != 2 {
		t.Errorf("ok requests = %v, want 2", counts["ok"])
	}
	if counts["error"] != 1 {
		t.Errorf("error requests = %v, want 1", counts["error"])
	}
}

type stubSessionCounter struct {
	n int
}

func (c *stubSessionCounter) Size() int { return c.n }

func TestActiveSessionsGauge(t *testing.T) {
	t.Parallel()

	counter := &stubSessionCounter{}
	metrics := NewMetrics()
	metrics.ObserveSessions(counter)

	gauge := func() float64 {
		t.Helper()
		families, err := metrics.Registry().Gather()
		if err != nil {
			t.Fatal(err)
		}
		for _, mf := range families {
			if mf.GetName() == "assuredesk_active_sessions" {
				return mf.GetMetric()[0].GetGauge().GetValue()
			}
		}
		t.Fatal("assuredesk_active_sessions not registered")
		return 0
	}

	if got := gauge(); got != 0 {
		t.Fatalf("initial gauge = %v, want 0", got)
	}
	counter.n = 3
	if got := gauge(); got != 3 {
		t.Fatalf("gauge = %v, want 3", got)
	}

	// Sessions reaped by expiry shrink the store; the gauge follows
	// without any bookkeeping on login or logout.
	counter.n = 1
	if got := gauge(); got != 1 {
		t.Fatalf("gauge after reaping = %v, want 1", got)
	}
}
