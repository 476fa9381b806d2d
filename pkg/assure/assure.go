// Package assure is the Go client SDK for the AssureDesk console API.
//
// The client holds the session token, persists it across restarts through a
// TokenStore, and serves reads through a generation-tagged cache that
// coalesces concurrent fetches for the same key and discards responses that
// were issued before the most recent invalidation.
package assure

import "time"

// User is an authenticated console user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Session pairs a bearer token with its user identity.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Connection is an upstream API connection.
type Connection struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Status        string     `json:"status"`
	LastConnected *time.Time `json:"lastConnected,omitempty"`
}

// Document is a file attached to an application.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Application is an assurance policy application.
type Application struct {
	ID             string     `json:"id"`
	PolicyNumber   string     `json:"policyNumber"`
	CustomerName   string     `json:"customerName"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Premium        float64    `json:"premium,omitempty"`
	CoverageAmount float64    `json:"coverageAmount,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Documents      []Document `json:"documents,omitempty"`
}

// TestResult is the outcome of a connectivity test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// applicationList is the wire shape of the applications collection.
type applicationList struct {
	Data  []Application `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
