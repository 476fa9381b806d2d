// Package assurance contains the domain types for assurance policy applications.
package assurance

import "time"

// Type is the line of assurance an application covers.
type Type string

const (
	TypeHealth   Type = "health"
	TypeLife     Type = "life"
	TypeAuto     Type = "auto"
	TypeProperty Type = "property"
	TypeTravel   Type = "travel"
)

// Types lists all valid application types in display order.
var Types = []Type{TypeHealth, TypeLife, TypeAuto, TypeProperty, TypeTravel}

// IsValid returns true if the type is a known valid type.
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Status is the review state of an application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusUnderReview Status = "under_review"
	StatusCancelled   Status = "cancelled"
	StatusActive      Status = "active"
	StatusExpired     Status = "expired"
)

// Statuses lists all valid application statuses in display order.
var Statuses = []Status{
	StatusPending, StatusApproved, StatusRejected,
	StatusUnderReview, StatusCancelled, StatusActive, StatusExpired,
}

// IsValid returns true if the status is a known valid status.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Document is a file attached to an application.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Application represents an assurance policy application.
// Applications are read-only through the API; records enter the system
// via seed fixtures or backing-store imports.
type Application struct {
	ID           string    `json:"id"`
	PolicyNumber string    `json:"policyNumber"`
	CustomerName string    `json:"customerName"`
	Type         Type      `json:"type"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Financial fields are optional; zero values are omitted on the wire.
	Premium        float64    `json:"premium,omitempty"`
	CoverageAmount float64    `json:"coverageAmount,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`

	// Documents are ordered by upload time.
	Documents []Document `json:"documents,omitempty"`
}
