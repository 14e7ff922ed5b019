// Package store persists organizations, plan limits, and memberships. These
// tables are owned by the billing/auth subsystems; this core reads them and
// never writes outside of seeding.
package store

import "qrius/pkg/platform/sentinel"

var ErrNotFound = sentinel.ErrNotFound
