package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/memory"
	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
	"github.com/Assure-Desk/assuredesk/internal/domain/session"
	"github.com/Assure-Desk/assuredesk/internal/service"
)

type stubProber struct {
	err error
}

func (p *stubProber) Probe(context.Context, string) error { return p.err }

type testEnv struct {
	server       *httptest.Server
	sessions     *session.Service
	sessionStore *memory.SessionStore
	applications *memory.ApplicationStore
	connections  *memory.ConnectionStore
	prober       *stubProber
	metrics      *Metrics
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		sessionStore: memory.NewSessionStore(),
		applications: memory.NewApplicationStore(),
		connections:  memory.NewConnectionStore(),
		prober:       &stubProber{},
		metrics:      NewMetrics(),
	}
	env.sessions = session.NewService(env.sessionStore, session.Config{})
	env.metrics.ObserveSessions(env.sessionStore)
	users := memory.NewUserStore()

	base := []Option{
		WithAuthService(service.NewAuthService(users, env.sessions, logger)),
		WithConnectionService(service.NewConnectionService(env.connections, env.prober, 0, logger)),
		WithApplicationService(service.NewApplicationService(env.applications, logger)),
		WithStatsService(service.NewStatsService(env.applications, env.connections)),
		WithSessionService(env.sessions),
		WithMetrics(env.metrics),
		WithHealthChecker(NewHealthChecker(env.sessionStore, nil, "test")),
		WithLogger(logger),
	}
	handler := NewHandler(append(base, opts...)...)

	env.server = httptest.NewServer(handler.Routes())
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// register + login, returns the bearer token.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "agent@example.com", "password": "correct-horse-battery", "name": "Agent",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	resp = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "agent@example.com", "password": "correct-horse-battery",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	body := decode[loginResponse](t, resp)
	if body.Token == "" || body.User == nil {
		t.Fatalf("login response incomplete: %+v", body)
	}
	return body.Token
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	token := env.login(t)

	// An authenticated request works.
	resp := env.do(t, http.MethodGet, "/api/connections", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authed request status = %d", resp.StatusCode)
	}

	// Logout invalidates the token.
	resp = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/api/connections", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-logout status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "agent@example.com", "password": "wrong-password-here",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] == "" {
		t.Error("error responses must carry a message")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "agent@example.com", "password": "correct-horse-battery",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	paths := []string{"/api/connections", "/api/applications", "/api/stats"}
	for _, path := range paths {
		resp := env.do(t, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s without token = %d, want 401", path, resp.StatusCode)
		}
		resp = env.do(t, http.MethodGet, path, "not-a-real-token", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s with bogus token = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestConnectionEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	resp := env.do(t, http.MethodPost, "/api/connections", token, map[string]string{
		"name": "Prod", "url": "https://api.example.com/v1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add connection status = %d", resp.StatusCode)
	}
	created := decode[connection.Connection](t, resp)
	if created.ID == "" || created.Status != connection.StatusConnected {
		t.Fatalf("created = %+v", created)
	}

	resp = env.do(t, http.MethodGet, "/api/connections", token, nil)
	list := decode[[]connection.Connection](t, resp)
	if len(list) != 1 || list[0].Name != "Prod" {
		t.Fatalf("list = %+v", list)
	}

	// Successful probe.
	resp = env.do(t, http.MethodPost, "/api/connections/"+created.ID+"/test", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("test status = %d", resp.StatusCode)
	}
	result := decode[testConnectionResponse](t, resp)
	if !result.Success {
		t.Errorf("test result = %+v, want success", result)
	}

	// Failing probe is 200 with success=false.
	env.prober.err = fmt.Errorf("connection refused")
	resp = env.do(t, http.MethodPost, "/api/connections/"+created.ID+"/test", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("failed test status = %d, want 200", resp.StatusCode)
	}
	result = decode[testConnectionResponse](t, resp)
	if result.Success || result.Message == "" {
		t.Errorf("failed test result = %+v", result)
	}

	// Unknown connection is 404.
	resp = env.do(t, http.MethodPost, "/api/connections/nope/test", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown connection test status = %d, want 404", resp.StatusCode)
	}
}

// failingUpdateStore rejects every status update, as a locked or full
// database would.
type failingUpdateStore struct {
	connection.Store
}

func (s *failingUpdateStore) Update(context.Context, *connection.Connection) error {
	return errors.New("database is locked")
}

func TestTestConnectionStoreFailure(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &failingUpdateStore{Store: memory.NewConnectionStore()}
	env := newTestEnv(t, WithConnectionService(
		service.NewConnectionService(store, &stubProber{}, 0, logger)))
	token := env.login(t)

	conn := &connection.Connection{ID: "c1", Name: "Prod", URL: "https://api.example.com", Status: connection.StatusConnected}
	if err := store.Store.Create(context.Background(), conn); err != nil {
		t.Fatal(err)
	}

	// A store failure is an internal error, not a negative test result,
	// and the details stay out of the response.
	resp := env.do(t, http.MethodPost, "/api/connections/c1/test", token, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] != "internal error" {
		t.Errorf("message = %q, want generic internal error", body["message"])
	}
}

func TestApplicationEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	app := &assurance.Application{
		ID: "a1", PolicyNumber: "HL-2024-0001", CustomerName: "Alice",
		Type: assurance.TypeHealth, Status: assurance.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := env.applications.Put(context.Background(), app); err != nil {
		t.Fatal(err)
	}

	resp := env.do(t, http.MethodGet, "/api/applications", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list := decode[applicationListResponse](t, resp)
	if list.Total != 1 || len(list.Data) != 1 || list.Data[0].PolicyNumber != "HL-2024-0001" {
		t.Fatalf("list = %+v", list)
	}

	resp = env.do(t, http.MethodGet, "/api/applications/a1", token, nil)
	got := decode[assurance.Application](t, resp)
	if got.CustomerName != "Alice" {
		t.Fatalf("application = %+v", got)
	}

	resp = env.do(t, http.MethodGet, "/api/applications/missing", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing application status = %d, want 404", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] == "" {
		t.Error("404 must carry a message")
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	ctx := context.Background()
	for i, status := range []assurance.Status{assurance.StatusActive, assurance.StatusActive, assurance.StatusPending} {
		app := &assurance.Application{
			ID: fmt.Sprintf("a%d", i), Type: assurance.TypeAuto, Status: status,
			CreatedAt: time.Now().UTC(),
		}
		if err := env.applications.Put(ctx, app); err != nil {
			t.Fatal(err)
		}
	}

	resp := env.do(t, http.MethodGet, "/api/stats", token, nil)
	stats := decode[service.Stats](t, resp)
	if stats.TotalApplications != 3 {
		t.Errorf("TotalApplications = %d, want 3", stats.TotalApplications)
	}
	if stats.ByStatus["active"] != 2 || stats.ByType["auto"] != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestUserNeverLeaksPasswordHash(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "agent@example.com", "password": "correct-horse-battery",
	})
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("passwordHash")) || bytes.Contains(raw, []byte("argon2")) {
		t.Fatalf("response leaks password material: %s", raw)
	}
	var user auth.User
	if err := json.Unmarshal(raw, &user); err != nil {
		t.Fatal(err)
	}
	if user.Email != "agent@example.com" {
		t.Errorf("user = %+v", user)
	}
}
