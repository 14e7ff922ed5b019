package models

import (
	"time"

	"github.com/google/uuid"
)

// Link is the short-code entity resolved on scan. OrganizationID is nullable:
// anonymous links predate organizations and still resolve.
type Link struct {
	ID             uuid.UUID  `json:"id"`
	ShortCode      string     `json:"short_code"`
	DestinationURL string     `json:"destination_url"`
	IsActive       bool       `json:"is_active"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	PasswordHash   *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Protected reports whether resolving this link requires a password.
func (l *Link) Protected() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// New constructs an active link owned by an organization.
func New(orgID uuid.UUID, shortCode, destinationURL string, now time.Time) *Link {
	org := orgID
	return &Link{
		ID:             uuid.New(),
		ShortCode:      shortCode,
		DestinationURL: destinationURL,
		IsActive:       true,
		OrganizationID: &org,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
