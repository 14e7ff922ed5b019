package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"qrius/internal/orgs/models"
)

// InMemory holds organizations, plan limits, and memberships for tests and
// local development. Seeded with the standard plan capability matrix.
type InMemory struct {
	mu          sync.RWMutex
	orgs        map[uuid.UUID]models.Organization
	limits      map[models.Plan]models.PlanLimits
	memberships map[string][]models.Membership
}

// NewInMemory constructs a store seeded with default plan limits.
func NewInMemory() *InMemory {
	return &InMemory{
		orgs: make(map[uuid.UUID]models.Organization),
		limits: map[models.Plan]models.PlanLimits{
			models.PlanFree:     {Plan: models.PlanFree, WhiteLabel: false},
			models.PlanPro:      {Plan: models.PlanPro, WhiteLabel: false},
			models.PlanBusiness: {Plan: models.PlanBusiness, WhiteLabel: true},
		},
		memberships: make(map[string][]models.Membership),
	}
}

// SeedOrganization inserts an organization. Test helper; production rows are
// owned by the billing subsystem.
func (s *InMemory) SeedOrganization(org models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.ID] = org
}

// SeedMembership inserts a membership row.
func (s *InMemory) SeedMembership(m models.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.UserID] = append(s.memberships[m.UserID], m)
}

func (s *InMemory) FindOrganization(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := org
	return &cp, nil
}

func (s *InMemory) FindPlanLimits(_ context.Context, plan models.Plan) (*models.PlanLimits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limits, ok := s.limits[plan]
	if !ok {
		return nil, ErrNotFound
	}
	cp := limits
	return &cp, nil
}

func (s *InMemory) FindMembership(_ context.Context, userID string, orgID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships[userID] {
		if m.OrganizationID == orgID {
			cp := m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemory) FindPrimaryMembership(_ context.Context, userID string) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms := s.memberships[userID]
	if len(ms) == 0 {
		return nil, ErrNotFound
	}
	cp := ms[0]
	return &cp, nil
}
