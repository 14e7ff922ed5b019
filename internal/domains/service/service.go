// Package service orchestrates domain registration, verification, and
// removal. Writes always hit the authoritative store before the cache so the
// cache is never ahead of the store; cache invalidation on removal completes
// before the row disappears from the caller's perspective.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrius/internal/audit"
	"qrius/internal/cache"
	"qrius/internal/domains/metrics"
	"qrius/internal/domains/models"
	"qrius/internal/domains/store"
	"qrius/internal/domains/validate"
	"qrius/internal/hosting"
	"qrius/internal/platform/middleware"
	dErrors "qrius/pkg/domain-errors"
)

// DomainStore is the authoritative store surface this service needs.
type DomainStore interface {
	Create(ctx context.Context, d *models.CustomDomain) error
	FindByOrg(ctx context.Context, orgID uuid.UUID) (*models.CustomDomain, error)
	FindByDomain(ctx context.Context, hostname string) (*models.CustomDomain, error)
	Update(ctx context.Context, d *models.CustomDomain) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanGate answers whether the organization may create custom domains.
type PlanGate interface {
	WhiteLabel(ctx context.Context, orgID uuid.UUID) (bool, error)
}

// DomainCache is the domain→organization projection this service maintains.
type DomainCache interface {
	SetDomain(ctx context.Context, hostname string, entry *cache.DomainEntry) error
	DeleteDomain(ctx context.Context, hostname string) error
}

// Service orchestrates the domain lifecycle.
type Service struct {
	domains    DomainStore
	gate       PlanGate
	cache      DomainCache
	provider   hosting.Provider
	baseDomain string
	// providerConfigured=false switches on the local/dev escape hatches:
	// registration is skipped and verification auto-succeeds.
	providerConfigured bool

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Publisher
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditPublisher sets the audit publisher.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithClock sets the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs the domain service. baseDomain may be empty (subdomain
// creation disabled); provider may be a client against a real hosting API or
// unconfigured (providerConfigured=false).
func New(domains DomainStore, gate PlanGate, domainCache DomainCache, provider hosting.Provider, baseDomain string, providerConfigured bool, opts ...Option) *Service {
	s := &Service{
		domains:            domains,
		gate:               gate,
		cache:              domainCache,
		provider:           provider,
		baseDomain:         baseDomain,
		providerConfigured: providerConfigured,
		logger:             slog.Default(),
		clock:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CNAMEInstructions tell the customer how to point their DNS at the platform.
type CNAMEInstructions struct {
	Type       string `json:"type"`
	Host       string `json:"host"`
	Value      string `json:"value"`
	FullRecord string `json:"fullRecord"`
}

// CreateResult is the outcome of a successful creation.
type CreateResult struct {
	Domain       *models.CustomDomain
	Instructions *CNAMEInstructions
}

// Get returns the organization's domain, or nil when none is configured.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID) (*models.CustomDomain, error) {
	d, err := s.domains.FindByOrg(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}
	return d, nil
}

// CreateSubdomain issues a platform subdomain under the configured base
// domain. Subdomains live under wildcard DNS the platform already controls,
// so the record is created verified and never touches the provider.
func (s *Service) CreateSubdomain(ctx context.Context, orgID uuid.UUID, label string) (*CreateResult, error) {
	if !validate.IsValidSubdomainLabel(label) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subdomain must be 3-63 lowercase letters, digits, or hyphens")
	}
	// The input was fine but the platform is not ready: unavailable, not a
	// validation error.
	if s.baseDomain == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "subdomains are not available on this deployment")
	}

	hostname := label + "." + s.baseDomain
	if !validate.IsValidDomain(hostname) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "composed hostname is not a valid domain")
	}

	if err := s.checkUniqueness(ctx, orgID, hostname); err != nil {
		return nil, err
	}

	d := models.NewSubdomain(orgID, hostname, s.clock())
	if err := s.domains.Create(ctx, d); err != nil {
		return nil, s.translateCreateErr(err)
	}

	// Best-effort, non-blocking: a cache miss just falls through to the
	// store, so population failure is logged and forgotten.
	s.populateCacheAsync(ctx, d)

	s.emit(ctx, audit.DomainCreated, d, "subdomain issued")
	s.metrics.IncrementCreated(string(models.TypeSubdomain))
	return &CreateResult{Domain: d}, nil
}

// CreateCustom registers a customer-owned hostname. Plan-gated; the provider
// registration is bounded and never retried here.
func (s *Service) CreateCustom(ctx context.Context, orgID uuid.UUID, hostname string) (*CreateResult, error) {
	if !validate.IsValidDomain(hostname) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid domain name")
	}

	allowed, err := s.gate.WhiteLabel(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, dErrors.New(dErrors.CodePlanLimit, "Custom domains require a Business plan").
			WithMeta("requiredPlan", "business")
	}

	if err := s.checkUniqueness(ctx, orgID, hostname); err != nil {
		return nil, err
	}

	cnameTarget := models.CNAMEPlaceholder
	if s.providerConfigured {
		result, err := s.provider.RegisterDomain(ctx, hostname)
		if err != nil {
			s.metrics.IncrementProviderError("register")
			if errors.Is(err, hosting.ErrDomainTaken) {
				return nil, dErrors.New(dErrors.CodeConflict, "domain is registered to another project")
			}
			s.logger.ErrorContext(ctx, "provider registration failed",
				"domain", hostname,
				"error", err,
				"request_id", middleware.GetRequestID(ctx),
			)
			return nil, dErrors.Wrap(err, dErrors.CodeBadGateway, "could not register domain with hosting provider")
		}
		cnameTarget = result.CNAMETarget
	} else {
		s.logger.WarnContext(ctx, "hosting provider not configured; skipping registration",
			"domain", hostname,
		)
	}

	d := models.NewCustomDomain(orgID, hostname, cnameTarget, s.clock())
	if err := s.domains.Create(ctx, d); err != nil {
		return nil, s.translateCreateErr(err)
	}

	// No cache entry until verification succeeds.
	s.emit(ctx, audit.DomainCreated, d, "custom domain registered")
	s.metrics.IncrementCreated(string(models.TypeCustom))
	return &CreateResult{Domain: d, Instructions: cnameInstructions(d)}, nil
}

// VerifyResult reports the record after a verify call and whether the call
// was a no-op on an already-verified domain.
type VerifyResult struct {
	Domain          *models.CustomDomain
	AlreadyVerified bool
}

// Verify advances the verification state machine. Idempotent: callers may
// poll it; an already-verified domain returns unchanged without a provider
// call. Provider failures leave the status untouched and are retried only by
// the next verify call.
func (s *Service) Verify(ctx context.Context, orgID uuid.UUID) (*VerifyResult, error) {
	start := s.clock()
	defer s.metrics.ObserveVerify(start)

	d, err := s.domains.FindByOrg(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no domain configured")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}

	if d.IsVerified() {
		return &VerifyResult{Domain: d, AlreadyVerified: true}, nil
	}

	if !s.providerConfigured {
		// Local/dev escape hatch: no provider to ask, so the check
		// trivially succeeds.
		if err := s.applyAndStore(ctx, d, models.CheckOutcome{Verified: true}); err != nil {
			return nil, err
		}
		s.populateCache(ctx, d)
		s.emit(ctx, audit.DomainVerified, d, "auto-verified (provider not configured)")
		s.metrics.IncrementVerified()
		return &VerifyResult{Domain: d}, nil
	}

	outcome, err := s.provider.CheckDomain(ctx, d.Domain)
	if err != nil {
		s.metrics.IncrementProviderError("check")
		message := "provider unreachable"
		var se *hosting.StatusError
		if errors.As(err, &se) {
			message = se.Error()
		}
		d.RecordCheckFailure(message, s.clock())
		if updateErr := s.domains.Update(ctx, d); updateErr != nil {
			s.logger.ErrorContext(ctx, "failed to record check failure",
				"domain", d.Domain,
				"error", updateErr,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadGateway, "provider verification check failed")
	}

	if err := s.applyAndStore(ctx, d, models.CheckOutcome{Verified: outcome.Verified, Reason: outcome.Reason}); err != nil {
		return nil, err
	}

	if d.IsVerified() {
		s.populateCache(ctx, d)
		s.emit(ctx, audit.DomainVerified, d, "provider confirmed DNS")
		s.metrics.IncrementVerified()
	}
	return &VerifyResult{Domain: d}, nil
}

// Delete removes the organization's domain: best-effort provider
// deregistration, synchronous cache invalidation, then the authoritative
// delete. Once this returns, no read may resolve the old domain through the
// cache.
func (s *Service) Delete(ctx context.Context, orgID uuid.UUID) error {
	d, err := s.domains.FindByOrg(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no domain configured")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}

	if d.Type == models.TypeCustom && s.providerConfigured {
		if err := s.provider.RemoveDomain(ctx, d.Domain); err != nil && !errors.Is(err, hosting.ErrDomainNotFound) {
			// Local consistency takes priority over cleanup symmetry with
			// the provider.
			s.metrics.IncrementProviderError("remove")
			s.logger.WarnContext(ctx, "provider deregistration failed; continuing with local removal",
				"domain", d.Domain,
				"error", err,
			)
		}
	}

	if err := s.cache.DeleteDomain(ctx, d.Domain); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate domain cache")
	}

	if err := s.domains.Delete(ctx, d.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Raced with another delete; the observable outcome is the same.
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete domain")
	}

	s.emit(ctx, audit.DomainDeleted, d, "")
	s.metrics.IncrementDeleted()
	return nil
}

// checkUniqueness runs the advisory reads: one domain per organization, one
// organization per hostname. The store's unique constraints remain the final
// backstop for races that slip past these checks.
func (s *Service) checkUniqueness(ctx context.Context, orgID uuid.UUID, hostname string) error {
	if _, err := s.domains.FindByOrg(ctx, orgID); err == nil {
		return dErrors.New(dErrors.CodeConflict, "organization already has a domain configured")
	} else if !errors.Is(err, store.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing domain")
	}

	if _, err := s.domains.FindByDomain(ctx, hostname); err == nil {
		return dErrors.New(dErrors.CodeConflict, "domain is already in use")
	} else if !errors.Is(err, store.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check domain availability")
	}
	return nil
}

func (s *Service) translateCreateErr(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "domain is already in use")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
}

func (s *Service) applyAndStore(ctx context.Context, d *models.CustomDomain, outcome models.CheckOutcome) error {
	if err := d.ApplyCheck(outcome, s.clock()); err != nil {
		return err
	}
	if err := s.domains.Update(ctx, d); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist domain status")
	}
	return nil
}

// populateCache writes the domain→organization mapping synchronously after a
// record reaches verified. A failure is logged, not propagated: the cache is
// a derived projection and reads fall through to the store.
func (s *Service) populateCache(ctx context.Context, d *models.CustomDomain) {
	entry := &cache.DomainEntry{OrganizationID: d.OrganizationID.String()}
	if err := s.cache.SetDomain(ctx, d.Domain, entry); err != nil {
		s.logger.WarnContext(ctx, "domain cache population failed",
			"domain", d.Domain,
			"error", err,
		)
	}
}

// populateCacheAsync spawns the population as a detached task with its own
// timeout and error logging. The caller never waits on it.
func (s *Service) populateCacheAsync(ctx context.Context, d *models.CustomDomain) {
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 5*time.Second)
		defer cancel()
		s.populateCache(ctx, d)
	}()
}

func (s *Service) emit(ctx context.Context, action audit.Action, d *models.CustomDomain, detail string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:         action,
		OrganizationID: d.OrganizationID.String(),
		Subject:        d.Domain,
		ActorID:        middleware.GetUserID(ctx),
		Detail:         detail,
		Timestamp:      s.clock().UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", string(action),
			"error", err,
		)
	}
}

func cnameInstructions(d *models.CustomDomain) *CNAMEInstructions {
	host := d.Domain
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	return &CNAMEInstructions{
		Type:       "CNAME",
		Host:       host,
		Value:      d.CNAMETarget,
		FullRecord: fmt.Sprintf("%s CNAME %s", d.Domain, d.CNAMETarget),
	}
}
