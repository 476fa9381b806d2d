// Package connection contains the domain types for backing API connections.
package connection

import "time"

// Status represents the reachability state of an API connection.
type Status string

const (
	// StatusConnected means the last probe of the connection succeeded.
	StatusConnected Status = "connected"
	// StatusDisconnected means the connection has not been probed recently.
	StatusDisconnected Status = "disconnected"
	// StatusError means the last probe of the connection failed.
	StatusError Status = "error"
)

// IsValid returns true if the status is a known valid status.
func (s Status) IsValid() bool {
	switch s {
	case StatusConnected, StatusDisconnected, StatusError:
		return true
	default:
		return false
	}
}

// Connection represents a configured backing API connection.
type Connection struct {
	// ID is the unique identifier (UUID), assigned at creation.
	ID string `json:"id"`
	// Name is the human-readable display name.
	Name string `json:"name"`
	// URL is the base URL of the backing API.
	URL string `json:"url"`
	// Status is the current reachability state.
	Status Status `json:"status"`
	// LastConnected is when the connection last probed successfully (UTC).
	// Nil if the connection has never been reached.
	LastConnected *time.Time `json:"lastConnected,omitempty"`
}
