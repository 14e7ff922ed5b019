package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"qrius/internal/domains/models"
	"qrius/pkg/platform/sentinel"
)

type DomainStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *DomainStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestDomainStoreSuite(t *testing.T) {
	suite.Run(t, new(DomainStoreSuite))
}

func (s *DomainStoreSuite) newCustom(host string) *models.CustomDomain {
	return models.NewCustomDomain(uuid.New(), host, "cname.hosting.example.com", time.Now())
}

func (s *DomainStoreSuite) TestCreateAndLookups() {
	s.Run("creates and finds by org and hostname", func() {
		d := s.newCustom("track.acme.com")
		s.Require().NoError(s.store.Create(s.ctx, d))

		byOrg, err := s.store.FindByOrg(s.ctx, d.OrganizationID)
		s.Require().NoError(err)
		s.Equal(d.Domain, byOrg.Domain)

		byHost, err := s.store.FindByDomain(s.ctx, "track.acme.com")
		s.Require().NoError(err)
		s.Equal(d.OrganizationID, byHost.OrganizationID)
	})

	s.Run("hostname lookup is case-insensitive", func() {
		d := s.newCustom("go.example.org")
		s.Require().NoError(s.store.Create(s.ctx, d))

		found, err := s.store.FindByDomain(s.ctx, "GO.Example.ORG")
		s.Require().NoError(err)
		s.Equal(d.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown org", func() {
		_, err := s.store.FindByOrg(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DomainStoreSuite) TestUniqueness() {
	s.Run("rejects second domain for the same organization", func() {
		d := s.newCustom("one.acme.com")
		s.Require().NoError(s.store.Create(s.ctx, d))

		second := models.NewCustomDomain(d.OrganizationID, "two.acme.com", "cname.hosting.example.com", time.Now())
		s.Require().ErrorIs(s.store.Create(s.ctx, second), sentinel.ErrConflict)
	})

	s.Run("rejects the same hostname across organizations", func() {
		d := s.newCustom("shared.acme.com")
		s.Require().NoError(s.store.Create(s.ctx, d))

		other := s.newCustom("shared.acme.com")
		s.Require().ErrorIs(s.store.Create(s.ctx, other), sentinel.ErrConflict)
	})
}

func (s *DomainStoreSuite) TestUpdate() {
	s.Run("persists status transitions", func() {
		d := s.newCustom("pending.acme.com")
		s.Require().NoError(s.store.Create(s.ctx, d))

		s.Require().NoError(d.ApplyCheck(models.CheckOutcome{Verified: true}, time.Now()))
		s.Require().NoError(s.store.Update(s.ctx, d))

		found, err := s.store.FindByOrg(s.ctx, d.OrganizationID)
		s.Require().NoError(err)
		s.Equal(models.StatusVerified, found.Status)
		s.Require().NotNil(found.VerifiedAt)
	})

	s.Run("returns ErrNotFound for unknown record", func() {
		d := s.newCustom("ghost.acme.com")
		s.Require().ErrorIs(s.store.Update(s.ctx, d), sentinel.ErrNotFound)
	})
}

func (s *DomainStoreSuite) TestDelete() {
	s.Run("removes the record and frees both uniqueness slots", func() {
		d := s.newCustom("gone.acme.com")
		s.Require().NoError(s.store.Create(s.ctx, d))
		s.Require().NoError(s.store.Delete(s.ctx, d.ID))

		_, err := s.store.FindByOrg(s.ctx, d.OrganizationID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		// Both the org slot and the hostname slot are reusable again.
		s.Require().NoError(s.store.Create(s.ctx, models.NewCustomDomain(d.OrganizationID, "gone.acme.com", "cname.hosting.example.com", time.Now())))
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		s.Require().ErrorIs(s.store.Delete(s.ctx, uuid.New()), sentinel.ErrNotFound)
	})
}
