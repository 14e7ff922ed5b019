// Package service implements link CRUD together with the cache coherence
// hooks the redirect path depends on: create populates the cache best-effort,
// while any mutation that changes what a scan resolves to (destination,
// active flag, deletion) must invalidate the cache before the caller sees
// success.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"qrius/internal/audit"
	"qrius/internal/cache"
	"qrius/internal/links/metrics"
	"qrius/internal/links/models"
	"qrius/internal/links/store"
	"qrius/internal/links/validate"
	"qrius/internal/platform/middleware"
	dErrors "qrius/pkg/domain-errors"
	"qrius/pkg/secrets"
)

const (
	codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	codeLength  = 8
	// generateAttempts bounds the retry loop when a random code collides
	// with an existing row.
	generateAttempts = 5
)

// LinkStore is the authoritative store surface this service needs.
type LinkStore interface {
	Create(ctx context.Context, l *models.Link) error
	FindByCode(ctx context.Context, shortCode string) (*models.Link, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Link, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Link, error)
	Update(ctx context.Context, l *models.Link) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LinkCache is the short-code projection this service keeps coherent.
type LinkCache interface {
	SetLink(ctx context.Context, code string, entry *cache.LinkEntry) error
	DeleteLink(ctx context.Context, code string) error
}

// Service owns link mutations and their cache side effects.
type Service struct {
	links   LinkStore
	cache   LinkCache
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

// New constructs the link service.
func New(links LinkStore, linkCache LinkCache, opts ...Option) *Service {
	s := &Service{
		links:  links,
		cache:  linkCache,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries the caller's link parameters. Alias, when set, is
// used as the short code instead of a generated one. Password protects the
// link behind a shared secret.
type CreateRequest struct {
	DestinationURL string
	Alias          string
	Password       string
}

// Create validates, persists, and best-effort caches a new link.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req CreateRequest) (*models.Link, error) {
	if err := validate.CheckDestination(req.DestinationURL); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	if req.Alias != "" && !validate.IsValidAlias(req.Alias) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "alias must be 1-50 letters, digits, hyphens, or underscores, and not a reserved word")
	}

	var passwordHash *string
	if req.Password != "" {
		hash, err := secrets.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	l, err := s.insert(ctx, orgID, req.Alias, req.DestinationURL, passwordHash)
	if err != nil {
		return nil, err
	}

	// Best-effort, non-blocking: there is no stale prior value for a fresh
	// code, so a population failure only costs one store round-trip later.
	s.populateCacheAsync(ctx, l)

	s.emit(ctx, audit.LinkCreated, l, "")
	s.metrics.IncrementCreated()
	return l, nil
}

// insert writes the row, generating short codes until one sticks when the
// caller did not choose an alias. An alias collision is the caller's problem;
// a generated-code collision is ours to retry.
func (s *Service) insert(ctx context.Context, orgID uuid.UUID, alias, destination string, passwordHash *string) (*models.Link, error) {
	if alias != "" {
		l := models.New(orgID, alias, destination, s.clock())
		l.PasswordHash = passwordHash
		if err := s.links.Create(ctx, l); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "alias is already in use")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create link")
		}
		return l, nil
	}

	for attempt := 0; attempt < generateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate short code")
		}
		l := models.New(orgID, code, destination, s.clock())
		l.PasswordHash = passwordHash
		err = s.links.Create(ctx, l)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create link")
		}
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique short code")
}

// Get returns a link owned by the organization.
func (s *Service) Get(ctx context.Context, orgID, linkID uuid.UUID) (*models.Link, error) {
	return s.owned(ctx, orgID, linkID)
}

// List returns the organization's links, newest first.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*models.Link, error) {
	links, err := s.links.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list links")
	}
	return links, nil
}

// UpdateRequest carries a partial link mutation; nil fields are untouched.
type UpdateRequest struct {
	DestinationURL *string
	IsActive       *bool
}

// Update applies a partial mutation. When the destination or active flag
// changes, the stale cache entry is invalidated synchronously after the store
// write; if that invalidation fails the whole mutation is reported as failed,
// because a stale entry would silently redirect scanners to the old
// destination.
func (s *Service) Update(ctx context.Context, orgID, linkID uuid.UUID, req UpdateRequest) (*models.Link, error) {
	l, err := s.owned(ctx, orgID, linkID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.DestinationURL != nil && *req.DestinationURL != l.DestinationURL {
		if err := validate.CheckDestination(*req.DestinationURL); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, err.Error())
		}
		l.DestinationURL = *req.DestinationURL
		changed = true
	}
	if req.IsActive != nil && *req.IsActive != l.IsActive {
		l.IsActive = *req.IsActive
		changed = true
	}
	if !changed {
		return l, nil
	}

	l.UpdatedAt = s.clock()
	if err := s.links.Update(ctx, l); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "link not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update link")
	}

	if err := s.cache.DeleteLink(ctx, l.ShortCode); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate link cache")
	}

	s.emit(ctx, audit.LinkUpdated, l, "")
	s.metrics.IncrementUpdated()
	return l, nil
}

// Delete removes a link. Cache invalidation is synchronous and must complete
// before the row is deleted: once this returns, no scan may resolve the old
// code through the cache.
func (s *Service) Delete(ctx context.Context, orgID, linkID uuid.UUID) error {
	l, err := s.owned(ctx, orgID, linkID)
	if err != nil {
		return err
	}

	if err := s.cache.DeleteLink(ctx, l.ShortCode); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate link cache")
	}

	if err := s.links.Delete(ctx, l.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Raced with another delete; the observable outcome is the same.
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete link")
	}

	s.emit(ctx, audit.LinkDeleted, l, "")
	s.metrics.IncrementDeleted()
	return nil
}

// owned loads a link and checks it belongs to the organization. A link owned
// by someone else is reported as not found, never as forbidden.
func (s *Service) owned(ctx context.Context, orgID, linkID uuid.UUID) (*models.Link, error) {
	l, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "link not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load link")
	}
	if l.OrganizationID == nil || *l.OrganizationID != orgID {
		return nil, dErrors.New(dErrors.CodeNotFound, "link not found")
	}
	return l, nil
}

// populateCacheAsync writes the short-code projection from a detached task.
// Password-protected links are never cached: the cache entry carries no hash,
// so a hit would bypass the password check.
func (s *Service) populateCacheAsync(ctx context.Context, l *models.Link) {
	if l.Protected() {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 5*time.Second)
		defer cancel()
		entry := &cache.LinkEntry{
			DestinationURL: l.DestinationURL,
			LinkID:         l.ID.String(),
		}
		if l.OrganizationID != nil {
			entry.OrganizationID = l.OrganizationID.String()
		}
		if err := s.cache.SetLink(ctx, l.ShortCode, entry); err != nil {
			s.logger.WarnContext(ctx, "link cache population failed",
				"short_code", l.ShortCode,
				"error", err,
			)
		}
	}()
}

func (s *Service) emit(ctx context.Context, action audit.Action, l *models.Link, detail string) {
	if s.auditor == nil {
		return
	}
	orgID := ""
	if l.OrganizationID != nil {
		orgID = l.OrganizationID.String()
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:         action,
		OrganizationID: orgID,
		Subject:        l.ShortCode,
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

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		buf[i] = codeCharset[num.Int64()]
	}
	return string(buf), nil
}
