// Package hosting talks to the external hosting/DNS provider that owns
// domain-level routing and verification. The provider is constructed once at
// process start from configuration and injected into services by interface;
// nothing in this package is a lazily-initialized singleton.
package hosting

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=hosting.go -destination=mocks/provider_mock.go -package=mocks

// RegisterResult is the provider's answer to a domain registration.
type RegisterResult struct {
	// CNAMETarget is the record value the customer must point their DNS at.
	CNAMETarget string
}

// CheckResult is the provider's answer to a domain status check.
type CheckResult struct {
	Verified bool
	// Reason explains why the domain is not verified yet. Empty when
	// Verified is true or the provider gave no detail.
	Reason string
}

// Provider is the contract the domain subsystem consumes. All calls are
// bounded by the caller's context; implementations must not retry
// internally - retries are always caller-initiated.
type Provider interface {
	RegisterDomain(ctx context.Context, hostname string) (RegisterResult, error)
	CheckDomain(ctx context.Context, hostname string) (CheckResult, error)
	RemoveDomain(ctx context.Context, hostname string) error
}

var (
	// ErrDomainTaken means the hostname is registered to another project on
	// the provider's side. Surfaced to clients as a conflict.
	ErrDomainTaken = errors.New("domain is registered to another project")
	// ErrDomainNotFound means the provider has no record of the hostname.
	// During removal this is treated as already-gone.
	ErrDomainNotFound = errors.New("domain not registered with provider")
)

// StatusError reports a non-2xx provider response. The verification path
// records its message verbatim in last_check_error.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned %d", e.StatusCode)
}
