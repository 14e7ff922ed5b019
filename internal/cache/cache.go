// Package cache is the fast lookup layer in front of the authoritative
// stores. Entries are derived projections: they can always be reconstructed
// from the stores, and the stores remain the source of truth. Writers follow
// store-first ordering so the cache is never ahead of the store.
package cache

import (
	"context"

	"qrius/pkg/platform/sentinel"
)

// LinkEntry is the projection served on the short-code redirect path.
type LinkEntry struct {
	DestinationURL string `json:"destination_url"`
	LinkID         string `json:"link_id"`
	OrganizationID string `json:"organization_id"`
}

// DomainEntry maps a verified hostname to its owning organization.
type DomainEntry struct {
	OrganizationID string `json:"organization_id"`
}

// ErrMiss is returned when the key is not cached. Callers fall through to the
// authoritative store.
var ErrMiss = sentinel.ErrNotFound

// RedirectCache shadows the link store (by short code) and the domain store
// (by hostname). Writes are idempotent; last-write-wins is acceptable because
// the cached value is derivable from the store at any time.
type RedirectCache interface {
	GetLink(ctx context.Context, code string) (*LinkEntry, error)
	SetLink(ctx context.Context, code string, entry *LinkEntry) error
	DeleteLink(ctx context.Context, code string) error

	GetDomain(ctx context.Context, hostname string) (*DomainEntry, error)
	SetDomain(ctx context.Context, hostname string, entry *DomainEntry) error
	DeleteDomain(ctx context.Context, hostname string) error
}
