// Package sqlite provides a durable store backed by an embedded SQLite
// database (modernc.org/sqlite, pure Go, no cgo). It implements the user,
// connection, and application store ports. Sessions stay in memory: they
// are ephemeral by design and a restart invalidates them.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
	name          TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'agent',
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS connections (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	url            TEXT NOT NULL,
	status         TEXT NOT NULL,
	last_connected TEXT
);

CREATE TABLE IF NOT EXISTS applications (
	id              TEXT PRIMARY KEY,
	policy_number   TEXT NOT NULL,
	customer_name   TEXT NOT NULL,
	type            TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL,
	premium         REAL,
	coverage_amount REAL,
	start_date      TEXT,
	end_date        TEXT
);

CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	url            TEXT NOT NULL,
	uploaded_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_application ON documents(application_id);
`

// Store wraps a SQLite database. Resource-specific store ports are exposed
// through the Users, Connections, and Applications views.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema. Use path ":memory:" for tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite serializes writes internally; a single connection
	// avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Debug("sqlite store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Users returns the auth.UserStore view.
func (s *Store) Users() *UserStore { return &UserStore{db: s.db} }

// Connections returns the connection.Store view.
func (s *Store) Connections() *ConnectionStore { return &ConnectionStore{db: s.db} }

// Applications returns the assurance.Store view.
func (s *Store) Applications() *ApplicationStore { return &ApplicationStore{db: s.db} }

// --- users ---

// UserStore implements auth.UserStore on the shared database.
type UserStore struct {
	db *sql.DB
}

// Create stores a new user.
func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, string(user.Role), user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return auth.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = ? COLLATE NOCASE`, email)
	return scanUser(row)
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	var role, createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = auth.Role(role)
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// --- connections ---

// ConnectionStore implements connection.Store on the shared database.
type ConnectionStore struct {
	db *sql.DB
}

// List returns all connections, ordered by name.
func (s *ConnectionStore) List(ctx context.Context) ([]connection.Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, status, last_connected FROM connections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	result := []connection.Connection{}
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *conn)
	}
	return result, rows.Err()
}

// Get retrieves a connection by ID.
func (s *ConnectionStore) Get(ctx context.Context, id string) (*connection.Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, status, last_connected FROM connections WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query connection: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, connection.ErrConnectionNotFound
	}
	return scanConnection(rows)
}

// Create stores a new connection.
func (s *ConnectionStore) Create(ctx context.Context, conn *connection.Connection) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connections (id, name, url, status, last_connected) VALUES (?, ?, ?, ?, ?)`,
		conn.ID, conn.Name, conn.URL, string(conn.Status), formatTimePtr(conn.LastConnected))
	if err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}
	return nil
}

// Update saves changes to an existing connection.
func (s *ConnectionStore) Update(ctx context.Context, conn *connection.Connection) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE connections SET name = ?, url = ?, status = ?, last_connected = ? WHERE id = ?`,
		conn.Name, conn.URL, string(conn.Status), formatTimePtr(conn.LastConnected), conn.ID)
	if err != nil {
		return fmt.Errorf("update connection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update connection: %w", err)
	}
	if n == 0 {
		return connection.ErrConnectionNotFound
	}
	return nil
}

func scanConnection(rows *sql.Rows) (*connection.Connection, error) {
	var c connection.Connection
	var status string
	var lastConnected sql.NullString
	if err := rows.Scan(&c.ID, &c.Name, &c.URL, &status, &lastConnected); err != nil {
		return nil, fmt.Errorf("scan connection: %w", err)
	}
	c.Status = connection.Status(status)
	if lastConnected.Valid {
		t := parseTime(lastConnected.String)
		c.LastConnected = &t
	}
	return &c, nil
}

// --- applications ---

// ApplicationStore implements assurance.Store on the shared database.
type ApplicationStore struct {
	db *sql.DB
}

// List returns all applications, newest first. Documents are not loaded
// for list views.
func (s *ApplicationStore) List(ctx context.Context) ([]assurance.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy_number, customer_name, type, status, created_at, updated_at,
		        premium, coverage_amount, start_date, end_date
		 FROM applications ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	result := []assurance.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

// Get retrieves an application by ID, including its documents.
func (s *ApplicationStore) Get(ctx context.Context, id string) (*assurance.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy_number, customer_name, type, status, created_at, updated_at,
		        premium, coverage_amount, start_date, end_date
		 FROM applications WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query application: %w", err)
	}

	if !rows.Next() {
		err := rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
		return nil, assurance.ErrApplicationNotFound
	}
	app, err := scanApplication(rows)
	// rows must be closed before issuing the documents query on the
	// single shared connection.
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	docs, err := s.documentsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Documents = docs
	return app, nil
}

// Put stores an application, replacing any existing record (and its
// documents) with the same ID.
func (s *ApplicationStore) Put(ctx context.Context, app *assurance.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO applications
		 (id, policy_number, customer_name, type, status, created_at, updated_at,
		  premium, coverage_amount, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.PolicyNumber, app.CustomerName, string(app.Type), string(app.Status),
		formatTime(app.CreatedAt), formatTime(app.UpdatedAt),
		nullFloat(app.Premium), nullFloat(app.CoverageAmount),
		formatTimePtr(app.StartDate), formatTimePtr(app.EndDate))
	if err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE application_id = ?`, app.ID); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	for _, doc := range app.Documents {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, application_id, name, type, url, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
			doc.ID, app.ID, doc.Name, doc.Type, doc.URL, formatTime(doc.UploadedAt))
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}

	return tx.Commit()
}

func (s *ApplicationStore) documentsFor(ctx context.Context, appID string) ([]assurance.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, url, uploaded_at FROM documents WHERE application_id = ? ORDER BY uploaded_at, id`, appID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []assurance.Document
	for rows.Next() {
		var d assurance.Document
		var uploadedAt string
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.URL, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.UploadedAt = parseTime(uploadedAt)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanApplication(rows *sql.Rows) (*assurance.Application, error) {
	var a assurance.Application
	var typ, status, createdAt, updatedAt string
	var premium, coverage sql.NullFloat64
	var startDate, endDate sql.NullString
	err := rows.Scan(&a.ID, &a.PolicyNumber, &a.CustomerName, &typ, &status,
		&createdAt, &updatedAt, &premium, &coverage, &startDate, &endDate)
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	a.Type = assurance.Type(typ)
	a.Status = assurance.Status(status)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	if premium.Valid {
		a.Premium = premium.Float64
	}
	if coverage.Valid {
		a.CoverageAmount = coverage.Float64
	}
	if startDate.Valid {
		t := parseTime(startDate.String)
		a.StartDate = &t
	}
	if endDate.Valid {
		t := parseTime(endDate.String)
		a.EndDate = &t
	}
	return &a, nil
}

// --- helpers ---

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

// Compile-time interface verification.
var (
	_ auth.UserStore   = (*UserStore)(nil)
	_ connection.Store = (*ConnectionStore)(nil)
	_ assurance.Store  = (*ApplicationStore)(nil)
)
