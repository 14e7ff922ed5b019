// Package resolve implements the scan read path: probe the redirect cache,
// fall back to the authoritative stores on a miss, and opportunistically
// repopulate the cache. The stores are always allowed to disagree with the
// cache in one direction only: a cache miss is cheap, a stale hit is a wrong
// redirect.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"qrius/internal/cache"
	domainmodels "qrius/internal/domains/models"
	linkmodels "qrius/internal/links/models"
	dErrors "qrius/pkg/domain-errors"
	"qrius/pkg/platform/sentinel"
	"qrius/pkg/secrets"
)

// LinkSource is the authoritative fallback for short-code lookups.
type LinkSource interface {
	FindByCode(ctx context.Context, shortCode string) (*linkmodels.Link, error)
}

// DomainSource is the authoritative fallback for hostname lookups.
type DomainSource interface {
	FindByDomain(ctx context.Context, hostname string) (*domainmodels.CustomDomain, error)
}

// Resolver answers "where does this scan go".
type Resolver struct {
	cache      cache.RedirectCache
	links      LinkSource
	domains    DomainSource
	baseDomain string
	logger     *slog.Logger
}

// New constructs a resolver. baseDomain is the apex the platform serves
// unscoped; scans arriving on any other host are scoped to that host's
// organization.
func New(redirectCache cache.RedirectCache, links LinkSource, domains DomainSource, baseDomain string, logger *slog.Logger) *Resolver {
	return &Resolver{
		cache:      redirectCache,
		links:      links,
		domains:    domains,
		baseDomain: baseDomain,
		logger:     logger,
	}
}

// Resolve maps a (host, short code) pair to a destination URL. The link and
// domain lookups are independent, so on the critical path they run in
// parallel. Links owned by another organization than the host's, inactive
// links, and unverified hosts all resolve to not-found; protected links
// require the caller's password.
func (r *Resolver) Resolve(ctx context.Context, host, code, password string) (string, error) {
	if code == "" {
		return "", dErrors.New(dErrors.CodeNotFound, "short link not found")
	}

	host = normalizeHost(host)
	scoped := host != "" && !strings.EqualFold(host, r.baseDomain)

	var (
		entry     *cache.LinkEntry
		full      *linkmodels.Link
		hostOrgID string
		hostKnown bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cached, err := r.cache.GetLink(gctx, code)
		if err == nil {
			entry = cached
			return nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			// Degraded cache: serve from the store rather than failing the scan.
			r.logger.WarnContext(gctx, "link cache read failed", "short_code", code, "error", err)
		}
		l, err := r.links.FindByCode(gctx, code)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load link")
		}
		full = l
		return nil
	})
	if scoped {
		g.Go(func() error {
			cached, err := r.cache.GetDomain(gctx, host)
			if err == nil {
				hostOrgID = cached.OrganizationID
				hostKnown = true
				return nil
			}
			if !errors.Is(err, cache.ErrMiss) {
				r.logger.WarnContext(gctx, "domain cache read failed", "host", host, "error", err)
			}
			d, err := r.domains.FindByDomain(gctx, host)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return nil
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
			}
			if !d.IsVerified() {
				return nil
			}
			hostOrgID = d.OrganizationID.String()
			hostKnown = true
			r.repopulateDomain(ctx, host, hostOrgID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	if full != nil {
		if !full.IsActive {
			return "", dErrors.New(dErrors.CodeNotFound, "short link not found")
		}
		if full.Protected() {
			if password == "" {
				return "", dErrors.New(dErrors.CodeUnauthorized, "password required")
			}
			if err := secrets.Verify(password, *full.PasswordHash); err != nil {
				return "", dErrors.New(dErrors.CodeUnauthorized, "invalid password")
			}
		}
		entry = &cache.LinkEntry{
			DestinationURL: full.DestinationURL,
			LinkID:         full.ID.String(),
		}
		if full.OrganizationID != nil {
			entry.OrganizationID = full.OrganizationID.String()
		}
		if !full.Protected() {
			r.repopulateLink(ctx, code, entry)
		}
	}

	if entry == nil {
		return "", dErrors.New(dErrors.CodeNotFound, "short link not found")
	}
	if scoped {
		if !hostKnown || entry.OrganizationID == "" || entry.OrganizationID != hostOrgID {
			return "", dErrors.New(dErrors.CodeNotFound, "short link not found")
		}
	}
	return entry.DestinationURL, nil
}

// repopulateLink refreshes the cache entry after a store fallback.
// Best-effort from a detached task; the scan never waits on it.
func (r *Resolver) repopulateLink(ctx context.Context, code string, entry *cache.LinkEntry) {
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 5*time.Second)
		defer cancel()
		if err := r.cache.SetLink(ctx, code, entry); err != nil {
			r.logger.WarnContext(ctx, "link cache repopulation failed", "short_code", code, "error", err)
		}
	}()
}

func (r *Resolver) repopulateDomain(ctx context.Context, host, orgID string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 5*time.Second)
		defer cancel()
		if err := r.cache.SetDomain(ctx, host, &cache.DomainEntry{OrganizationID: orgID}); err != nil {
			r.logger.WarnContext(ctx, "domain cache repopulation failed", "host", host, "error", err)
		}
	}()
}

func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}
