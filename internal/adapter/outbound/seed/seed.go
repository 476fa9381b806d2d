// Package seed loads demo-data fixtures into the backing stores.
//
// Fixtures are YAML files describing users, connections, and applications.
// Timestamps are expressed as offsets relative to load time ("720h ago"),
// so seeded data always looks recent.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

// Fixtures is the parsed content of a seed file.
type Fixtures struct {
	Users        []UserFixture        `yaml:"users"`
	Connections  []ConnectionFixture  `yaml:"connections"`
	Applications []ApplicationFixture `yaml:"applications"`
}

// UserFixture describes a user to create. A plaintext password is hashed
// at load time and never stored; an already-encoded argon2id string
// (e.g. from "assuredesk hash-password") is taken as-is.
type UserFixture struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

// ConnectionFixture describes an API connection to create.
type ConnectionFixture struct {
	Name             string        `yaml:"name"`
	URL              string        `yaml:"url"`
	Status           string        `yaml:"status"`
	LastConnectedAgo time.Duration `yaml:"last_connected_ago"`
}

// ApplicationFixture describes an assurance application to create.
type ApplicationFixture struct {
	PolicyNumber   string        `yaml:"policy_number"`
	CustomerName   string        `yaml:"customer_name"`
	Type           string        `yaml:"type"`
	Status         string        `yaml:"status"`
	CreatedAgo     time.Duration `yaml:"created_ago"`
	UpdatedAgo     time.Duration `yaml:"updated_ago"`
	Premium        float64       `yaml:"premium"`
	CoverageAmount float64       `yaml:"coverage_amount"`
	StartsAgo      time.Duration `yaml:"starts_ago"`
	EndsIn         time.Duration `yaml:"ends_in"`

	Documents []DocumentFixture `yaml:"documents"`
}

// DocumentFixture describes a document attached to an application.
type DocumentFixture struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`
	URL         string        `yaml:"url"`
	UploadedAgo time.Duration `yaml:"uploaded_ago"`
}

// Stores bundles the store ports seeding writes into. Any nil store is
// skipped.
type Stores struct {
	Users        auth.UserStore
	Connections  connection.Store
	Applications assurance.Store
}

// LoadFile reads and parses a YAML seed file.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply writes the fixtures into the given stores. Validation failures
// abort the load; a duplicate user email is skipped so re-seeding an
// existing database stays idempotent.
func (f *Fixtures) Apply(ctx context.Context, stores Stores, logger *slog.Logger) error {
	now := time.Now().UTC()

	if stores.Users != nil {
		for i, uf := range f.Users {
			if uf.Email == "" || uf.Password == "" {
				return fmt.Errorf("users[%d]: email and password are required", i)
			}
			role := auth.Role(uf.Role)
			if uf.Role == "" {
				role = auth.RoleAgent
			}
			if !role.IsValid() {
				return fmt.Errorf("users[%d]: invalid role %q", i, uf.Role)
			}
			hash := uf.Password
			if !strings.HasPrefix(hash, "$argon2id$") {
				var err error
				hash, err = auth.HashPassword(uf.Password)
				if err != nil {
					return fmt.Errorf("users[%d]: %w", i, err)
				}
			}
			user := &auth.User{
				ID:           uuid.NewString(),
				Email:        uf.Email,
				Name:         uf.Name,
				Role:         role,
				PasswordHash: hash,
				CreatedAt:    now,
			}
			if err := stores.Users.Create(ctx, user); err != nil {
				if err == auth.ErrDuplicateEmail {
					logger.Debug("seed user already exists", "email", uf.Email)
					continue
				}
				return fmt.Errorf("users[%d]: %w", i, err)
			}
			logger.Info("seeded user", "email", uf.Email, "role", role)
		}
	}

	if stores.Connections != nil {
		for i, cf := range f.Connections {
			status := connection.Status(cf.Status)
			if cf.Status == "" {
				status = connection.StatusDisconnected
			}
			if !status.IsValid() {
				return fmt.Errorf("connections[%d]: invalid status %q", i, cf.Status)
			}
			conn := &connection.Connection{
				ID:     uuid.NewString(),
				Name:   cf.Name,
				URL:    cf.URL,
				Status: status,
			}
			if status == connection.StatusConnected || cf.LastConnectedAgo > 0 {
				t := now.Add(-cf.LastConnectedAgo)
				conn.LastConnected = &t
			}
			if err := stores.Connections.Create(ctx, conn); err != nil {
				return fmt.Errorf("connections[%d]: %w", i, err)
			}
		}
		logger.Info("seeded connections", "count", len(f.Connections))
	}

	if stores.Applications != nil {
		for i, af := range f.Applications {
			typ := assurance.Type(af.Type)
			if !typ.IsValid() {
				return fmt.Errorf("applications[%d]: invalid type %q", i, af.Type)
			}
			status := assurance.Status(af.Status)
			if !status.IsValid() {
				return fmt.Errorf("applications[%d]: invalid status %q", i, af.Status)
			}
			app := &assurance.Application{
				ID:             uuid.NewString(),
				PolicyNumber:   af.PolicyNumber,
				CustomerName:   af.CustomerName,
				Type:           typ,
				Status:         status,
				CreatedAt:      now.Add(-af.CreatedAgo),
				UpdatedAt:      now.Add(-af.UpdatedAgo),
				Premium:        af.Premium,
				CoverageAmount: af.CoverageAmount,
			}
			if af.StartsAgo > 0 {
				t := now.Add(-af.StartsAgo)
				app.StartDate = &t
			}
			if af.EndsIn > 0 {
				t := now.Add(af.EndsIn)
				app.EndDate = &t
			}
			for _, df := range af.Documents {
				app.Documents = append(app.Documents, assurance.Document{
					ID:         uuid.NewString(),
					Name:       df.Name,
					Type:       df.Type,
					URL:        df.URL,
					UploadedAt: now.Add(-df.UploadedAgo),
				})
			}
			if err := stores.Applications.Put(ctx, app); err != nil {
				return fmt.Errorf("applications[%d]: %w", i, err)
			}
		}
		logger.Info("seeded applications", "count", len(f.Applications))
	}

	return nil
}

// Default returns built-in demo fixtures: three connections and five
// applications covering every line of assurance, mirroring the data the
// console's dashboard charts expect.
func Default() *Fixtures {
	day := 24 * time.Hour
	return &Fixtures{
		Connections: []ConnectionFixture{
			{Name: "Production API", URL: "https://api.assurance-service.com/v1", Status: "connected"},
			{Name: "Staging API", URL: "https://staging-api.assurance-service.com/v1", Status: "connected"},
			{Name: "Development API", URL: "https://dev-api.assurance-service.com/v1", Status: "disconnected", LastConnectedAgo: day},
		},
		Applications: []ApplicationFixture{
			{PolicyNumber: "HL-2023-0001", CustomerName: "John Doe", Type: "health", Status: "active",
				CreatedAgo: 30 * day, UpdatedAgo: 5 * day, Premium: 350.50, CoverageAmount: 500000,
				StartsAgo: 30 * day, EndsIn: 335 * day},
			{PolicyNumber: "LF-2023-0425", CustomerName: "Jane Smith", Type: "life", Status: "pending",
				CreatedAgo: 7 * day, UpdatedAgo: 2 * day, Premium: 125.75, CoverageAmount: 250000},
			{PolicyNumber: "AT-2023-0892", CustomerName: "Robert Johnson", Type: "auto", Status: "under_review",
				CreatedAgo: 14 * day, UpdatedAgo: day, Premium: 780.25, CoverageAmount: 30000},
			{PolicyNumber: "PR-2023-1204", CustomerName: "Emily Clark", Type: "property", Status: "approved",
				CreatedAgo: 10 * day, Premium: 950.00, CoverageAmount: 750000},
			{PolicyNumber: "TR-2023-0537", CustomerName: "Michael Wong", Type: "travel", Status: "active",
				CreatedAgo: 22 * day, UpdatedAgo: 20 * day, Premium: 85.99, CoverageAmount: 50000,
				StartsAgo: 20 * day, EndsIn: 10 * day},
		},
	}
}
