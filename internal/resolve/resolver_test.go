package resolve_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"qrius/internal/cache"
	domainmodels "qrius/internal/domains/models"
	domainstore "qrius/internal/domains/store"
	linkmodels "qrius/internal/links/models"
	linkstore "qrius/internal/links/store"
	"qrius/internal/resolve"
	dErrors "qrius/pkg/domain-errors"
	"qrius/pkg/secrets"
)

type fixture struct {
	resolver *resolve.Resolver
	cache    *cache.InMemory
	links    *linkstore.InMemory
	domains  *domainstore.InMemory
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cache:   cache.NewInMemory(),
		links:   linkstore.NewInMemory(),
		domains: domainstore.NewInMemory(),
		now:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	f.resolver = resolve.New(f.cache, f.links, f.domains, "qrius.app", logger)
	return f
}

func (f *fixture) seedLink(t *testing.T, orgID uuid.UUID, code, destination string) *linkmodels.Link {
	t.Helper()
	l := linkmodels.New(orgID, code, destination, f.now)
	require.NoError(t, f.links.Create(context.Background(), l))
	return l
}

func (f *fixture) seedVerifiedDomain(t *testing.T, orgID uuid.UUID, hostname string) {
	t.Helper()
	d := domainmodels.NewCustomDomain(orgID, hostname, "cname.hosting.example.com", f.now)
	require.NoError(t, d.ApplyCheck(domainmodels.CheckOutcome{Verified: true}, f.now))
	require.NoError(t, f.domains.Create(context.Background(), d))
}

func waitForLinkEntry(t *testing.T, c *cache.InMemory, code string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := c.GetLink(context.Background(), code)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestResolveCacheHit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cache.SetLink(context.Background(), "promo", &cache.LinkEntry{
		DestinationURL: "https://example.com/cached",
		LinkID:         uuid.NewString(),
	}))

	destination, err := f.resolver.Resolve(context.Background(), "qrius.app", "promo", "")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/cached", destination)
}

func TestResolveStoreFallback(t *testing.T) {
	t.Run("cold cache falls through and repopulates", func(t *testing.T) {
		f := newFixture(t)
		f.seedLink(t, uuid.New(), "promo", "https://example.com/landing")

		destination, err := f.resolver.Resolve(context.Background(), "qrius.app", "promo", "")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/landing", destination)

		waitForLinkEntry(t, f.cache, "promo")
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.resolver.Resolve(context.Background(), "qrius.app", "nope", "")
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("inactive link does not redirect", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLink(t, uuid.New(), "promo", "https://example.com/landing")
		l.IsActive = false
		require.NoError(t, f.links.Update(context.Background(), l))

		_, err := f.resolver.Resolve(context.Background(), "qrius.app", "promo", "")
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestResolvePassword(t *testing.T) {
	seedProtected := func(t *testing.T, f *fixture) {
		t.Helper()
		hash, err := secrets.Hash("open sesame")
		require.NoError(t, err)
		l := linkmodels.New(uuid.New(), "gated", "https://example.com/secret", f.now)
		l.PasswordHash = &hash
		require.NoError(t, f.links.Create(context.Background(), l))
	}

	t.Run("missing password is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		seedProtected(t, f)

		_, err := f.resolver.Resolve(context.Background(), "qrius.app", "gated", "")
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		seedProtected(t, f)

		_, err := f.resolver.Resolve(context.Background(), "qrius.app", "gated", "guess")
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("correct password resolves without caching the link", func(t *testing.T) {
		f := newFixture(t)
		seedProtected(t, f)

		destination, err := f.resolver.Resolve(context.Background(), "qrius.app", "gated", "open sesame")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/secret", destination)

		time.Sleep(50 * time.Millisecond)
		_, err = f.cache.GetLink(context.Background(), "gated")
		require.ErrorIs(t, err, cache.ErrMiss)
	})
}

func TestResolveScopedHost(t *testing.T) {
	t.Run("link resolves on its organization's verified domain", func(t *testing.T) {
		f := newFixture(t)
		orgID := uuid.New()
		f.seedLink(t, orgID, "promo", "https://example.com/landing")
		f.seedVerifiedDomain(t, orgID, "track.acme.com")

		destination, err := f.resolver.Resolve(context.Background(), "track.acme.com:443", "promo", "")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/landing", destination)
	})

	t.Run("domain fallback repopulates the domain cache", func(t *testing.T) {
		f := newFixture(t)
		orgID := uuid.New()
		f.seedLink(t, orgID, "promo", "https://example.com/landing")
		f.seedVerifiedDomain(t, orgID, "track.acme.com")

		_, err := f.resolver.Resolve(context.Background(), "track.acme.com", "promo", "")
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			entry, err := f.cache.GetDomain(context.Background(), "track.acme.com")
			return err == nil && entry.OrganizationID == orgID.String()
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("another organization's link does not resolve on the host", func(t *testing.T) {
		f := newFixture(t)
		f.seedLink(t, uuid.New(), "promo", "https://example.com/landing")
		f.seedVerifiedDomain(t, uuid.New(), "track.acme.com")

		_, err := f.resolver.Resolve(context.Background(), "track.acme.com", "promo", "")
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unknown host does not resolve", func(t *testing.T) {
		f := newFixture(t)
		orgID := uuid.New()
		f.seedLink(t, orgID, "promo", "https://example.com/landing")

		_, err := f.resolver.Resolve(context.Background(), "unknown.example.com", "promo", "")
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unverified host does not resolve", func(t *testing.T) {
		f := newFixture(t)
		orgID := uuid.New()
		f.seedLink(t, orgID, "promo", "https://example.com/landing")
		d := domainmodels.NewCustomDomain(orgID, "track.acme.com", "cname.hosting.example.com", f.now)
		require.NoError(t, f.domains.Create(context.Background(), d))

		_, err := f.resolver.Resolve(context.Background(), "track.acme.com", "promo", "")
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("apex host serves links from any organization", func(t *testing.T) {
		f := newFixture(t)
		f.seedLink(t, uuid.New(), "promo", "https://example.com/landing")

		destination, err := f.resolver.Resolve(context.Background(), "QRIUS.APP", "promo", "")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/landing", destination)
	})
}
