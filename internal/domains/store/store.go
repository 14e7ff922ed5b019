// Package store persists custom domain records. Implementations return
// sentinel errors (pkg/platform/sentinel); the service layer translates them
// into coded domain errors.
package store

import "qrius/pkg/platform/sentinel"

var (
	// ErrNotFound is returned when no domain record matches the lookup.
	ErrNotFound = sentinel.ErrNotFound
	// ErrConflict is returned when a uniqueness constraint (one record per
	// organization, globally unique hostname) rejects an insert. The store
	// constraint is the final backstop behind the service's advisory reads.
	ErrConflict = sentinel.ErrConflict
)
