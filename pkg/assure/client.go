package assure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout is the default per-operation timeout budget.
const DefaultTimeout = 5 * time.Second

// Client is the AssureDesk SDK client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenStore
	cache      *Cache
	notifier   Notifier
	logger     *slog.Logger

	mu      sync.Mutex
	session *Session // nil when anonymous
}

// NewClient creates a new client. It reads ASSUREDESK_API_URL by default
// and rehydrates the session from the token store: a persisted token is
// trusted optimistically with a placeholder identity rather than
// re-validated against the server; the first rejected request clears it.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:  envOrDefault("ASSUREDESK_API_URL", "http://localhost:8080"),
		timeout:  DefaultTimeout,
		cache:    NewCache(),
		notifier: nopNotifier{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = NewFileTokenStore("")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}

	token, err := c.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("rehydrate session: %w", err)
	}
	if token != "" {
		c.session = &Session{Token: token, User: placeholderUser()}
	}
	return c, nil
}

// placeholderUser stands in for the real identity after rehydration, until
// a fresh login replaces it.
func placeholderUser() *User {
	return &User{Name: "User"}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IsAuthenticated reports whether a session token is held.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// CurrentUser returns the session's user, or nil when anonymous. After
// rehydration this is a placeholder until the next login.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	u := *c.session.User
	return &u
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// Cache exposes the view-model cache for Snapshot reads.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Login authenticates and commits the session: the token is persisted and
// all subsequent requests carry it. A failed login changes nothing.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" {
		return nil, c.fail(&ValidationError{Field: "email", Message: "required"})
	}
	if password == "" {
		return nil, c.fail(&ValidationError{Field: "password", Message: "required"})
	}

	var sess Session
	body := map[string]string{"email": email, "password": password}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", body, &sess, false); err != nil {
		return nil, c.fail(err)
	}

	if err := c.tokens.Save(sess.Token); err != nil {
		return nil, c.fail(fmt.Errorf("persist token: %w", err))
	}
	c.mu.Lock()
	c.session = &sess
	c.mu.Unlock()

	c.logger.Debug("logged in", "email", email)
	return &sess, nil
}

// Register creates an account. It does not commit a session; call Login
// separately.
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, c.fail(&ValidationError{Field: "email", Message: "required"})
	}
	if len(password) < 8 {
		return nil, c.fail(&ValidationError{Field: "password", Message: "must be at least 8 characters"})
	}

	var user User
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", body, &user, false); err != nil {
		return nil, c.fail(err)
	}
	return &user, nil
}

// Logout ends the session server-side, clears the persisted token, and
// resets all cache state. The local teardown happens even when the server
// call fails; a dead server must not pin a session on disk.
func (c *Client) Logout(ctx context.Context) error {
	token := c.token()
	if token == "" {
		return nil
	}

	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true); err != nil {
		c.logger.Warn("server-side logout failed", "error", err)
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.cache.Reset()
	if err := c.tokens.Clear(); err != nil {
		return c.fail(fmt.Errorf("clear token: %w", err))
	}
	return nil
}

// FetchConnections returns the connections list, served from cache when
// fresh. Concurrent calls share a single request.
func (c *Client) FetchConnections(ctx context.Context) ([]Connection, error) {
	data, err := c.cache.Fetch(ctx, KeyConnections, func(ctx context.Context) (any, error) {
		var conns []Connection
		if err := c.doRequest(ctx, http.MethodGet, "/api/connections", nil, &conns, true); err != nil {
			return nil, c.fail(err)
		}
		return conns, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]Connection), nil
}

// AddConnection creates a connection. On success the connections cache key
// is invalidated so the next read reflects the new record.
func (c *Client) AddConnection(ctx context.Context, name, url string) (*Connection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, c.fail(&ValidationError{Field: "name", Message: "required"})
	}
	if strings.TrimSpace(url) == "" {
		return nil, c.fail(&ValidationError{Field: "url", Message: "required"})
	}

	var conn Connection
	body := map[string]string{"name": name, "url": url}
	if err := c.doRequest(ctx, http.MethodPost, "/api/connections", body, &conn, true); err != nil {
		return nil, c.fail(err)
	}
	c.cache.Invalidate(KeyConnections)
	return &conn, nil
}

// TestConnection probes a connection. It either returns a successful
// result or an error; a completed probe with a negative outcome is a
// *TestFailedError. Any completed test, reachable or not, changed
// server-side state, so the connections key is invalidated. A request
// failure (the call itself not completing) leaves the cache alone.
func (c *Client) TestConnection(ctx context.Context, id string) (*TestResult, error) {
	var result TestResult
	path := "/api/connections/" + id + "/test"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &result, true); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, c.fail(&NotFoundError{Resource: "connection", ID: id})
		}
		return nil, c.fail(err)
	}
	c.cache.Invalidate(KeyConnections)
	if !result.Success {
		return nil, c.fail(&TestFailedError{ID: id, Message: result.Message})
	}
	return &result, nil
}

// FetchApplications returns all applications, served from cache when fresh.
func (c *Client) FetchApplications(ctx context.Context) ([]Application, error) {
	data, err := c.cache.Fetch(ctx, KeyApplications, func(ctx context.Context) (any, error) {
		var list applicationList
		if err := c.doRequest(ctx, http.MethodGet, "/api/applications", nil, &list, true); err != nil {
			return nil, c.fail(err)
		}
		return list.Data, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]Application), nil
}

// FetchApplicationByID returns one application, cached under its own key.
// A miss is a NotFoundError, never a partial record.
func (c *Client) FetchApplicationByID(ctx context.Context, id string) (*Application, error) {
	data, err := c.cache.Fetch(ctx, KeyApplication(id), func(ctx context.Context) (any, error) {
		var app Application
		if err := c.doRequest(ctx, http.MethodGet, "/api/applications/"+id, nil, &app, true); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
				return nil, c.fail(&NotFoundError{Resource: "application", ID: id})
			}
			return nil, c.fail(err)
		}
		return &app, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*Application), nil
}

// fail notifies the user-visible channel exactly once and passes the error
// through.
func (c *Client) fail(err error) error {
	c.notifier.Notify(LevelError, err.Error())
	return err
}

// errorBody is the wire shape of a non-2xx response.
type errorBody struct {
	Message string `json:"message"`
}

// doRequest performs one HTTP request. Single attempt, no retry, bounded
// by the client's timeout budget. authed requests carry the bearer token;
// a 401 on them tears the session down, since the server has declared the
// token dead.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, authed bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := strings.TrimRight(c.baseURL, "/") + path
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.token()
		if token == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)

		if resp.StatusCode == http.StatusUnauthorized {
			if authed {
				c.invalidateSession()
			}
			return &AuthError{Message: eb.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Message}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// invalidateSession clears all local session state after the server
// rejected the token.
func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.cache.Reset()
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("failed to clear rejected token", "error", err)
	}
	c.logger.Debug("session invalidated by server")
}
