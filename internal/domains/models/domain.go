package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "qrius/pkg/domain-errors"
)

// DomainType distinguishes platform-issued subdomains from customer-owned
// hostnames.
type DomainType string

const (
	TypeSubdomain DomainType = "subdomain"
	TypeCustom    DomainType = "custom"
)

// DomainStatus is the verification state of a domain. Transitions move
// forward only: pending → verifying → verified. Once a check has been
// attempted the record never returns to pending, even after provider
// failures.
type DomainStatus string

const (
	StatusPending   DomainStatus = "pending"
	StatusVerifying DomainStatus = "verifying"
	StatusVerified  DomainStatus = "verified"
)

var statusRank = map[DomainStatus]int{
	StatusPending:   0,
	StatusVerifying: 1,
	StatusVerified:  2,
}

// CanTransitionTo reports whether the status may move to next.
func (s DomainStatus) CanTransitionTo(next DomainStatus) bool {
	return statusRank[next] >= statusRank[s]
}

// CNAMEPlaceholder is stored when the hosting provider is not configured and
// for subdomain records, which never need customer DNS instructions.
const CNAMEPlaceholder = "n/a"

// CustomDomain is the aggregate root for an organization's domain.
//
// Invariants:
//   - At most one record per organization
//   - Domain is globally unique across all organizations
//   - Type=subdomain records are created already verified (the platform
//     controls the wildcard DNS they live under)
//   - Type=custom records start pending and reach verified only through a
//     provider check or the local auto-verify escape hatch
type CustomDomain struct {
	ID             uuid.UUID    `json:"id"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	Domain         string       `json:"domain"`
	Type           DomainType   `json:"type"`
	CNAMETarget    string       `json:"cname_target"`
	Status         DomainStatus `json:"status"`
	VerifiedAt     *time.Time   `json:"verified_at"`
	LastCheckAt    *time.Time   `json:"last_check_at"`
	LastCheckError *string      `json:"last_check_error"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsVerified reports whether scans may resolve through this domain.
func (d *CustomDomain) IsVerified() bool {
	return d.Status == StatusVerified
}

// NewSubdomain constructs a platform-issued subdomain record. Subdomains skip
// the state machine entirely: wildcard DNS already points at the platform, so
// the record is born verified.
func NewSubdomain(orgID uuid.UUID, hostname string, now time.Time) *CustomDomain {
	verifiedAt := now
	return &CustomDomain{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Domain:         hostname,
		Type:           TypeSubdomain,
		CNAMETarget:    CNAMEPlaceholder,
		Status:         StatusVerified,
		VerifiedAt:     &verifiedAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewCustomDomain constructs a customer-owned domain record in pending state.
func NewCustomDomain(orgID uuid.UUID, hostname, cnameTarget string, now time.Time) *CustomDomain {
	return &CustomDomain{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Domain:         hostname,
		Type:           TypeCustom,
		CNAMETarget:    cnameTarget,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CheckOutcome is the provider's answer to a status check, normalized so the
// transition logic stays independent of the wire format.
type CheckOutcome struct {
	Verified bool
	Reason   string
}

// DefaultUnverifiedReason is recorded when the provider reports the domain as
// unverified without supplying a reason.
const DefaultUnverifiedReason = "DNS not configured yet"

// ApplyCheck advances the record based on a successful provider response.
// The function is deterministic in (record, outcome, now): concurrent verify
// calls that race on the same record converge on the same final state
// regardless of call order.
func (d *CustomDomain) ApplyCheck(outcome CheckOutcome, now time.Time) error {
	checkedAt := now
	if outcome.Verified {
		if !d.Status.CanTransitionTo(StatusVerified) {
			return dErrors.New(dErrors.CodeInvariantViolation, "domain status cannot advance to verified")
		}
		d.Status = StatusVerified
		d.VerifiedAt = &checkedAt
		d.LastCheckAt = &checkedAt
		d.LastCheckError = nil
		d.UpdatedAt = now
		return nil
	}

	if !d.Status.CanTransitionTo(StatusVerifying) {
		return dErrors.New(dErrors.CodeInvariantViolation, "domain status cannot advance to verifying")
	}
	reason := outcome.Reason
	if reason == "" {
		reason = DefaultUnverifiedReason
	}
	d.Status = StatusVerifying
	d.LastCheckAt = &checkedAt
	d.LastCheckError = &reason
	d.UpdatedAt = now
	return nil
}

// RecordCheckFailure notes a failed provider call without changing status.
// The next verify attempt retries from the same state.
func (d *CustomDomain) RecordCheckFailure(message string, now time.Time) {
	checkedAt := now
	d.LastCheckAt = &checkedAt
	d.LastCheckError = &message
	d.UpdatedAt = now
}
