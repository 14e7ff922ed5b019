// Package store persists links. Implementations return sentinel errors
// (pkg/platform/sentinel); the service layer translates them into coded
// domain errors.
package store

import "qrius/pkg/platform/sentinel"

var (
	// ErrNotFound is returned when no link matches the lookup.
	ErrNotFound = sentinel.ErrNotFound
	// ErrConflict is returned when the unique short-code index rejects an
	// insert.
	ErrConflict = sentinel.ErrConflict
)
