package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"qrius/internal/domains/models"
)

// InMemory is a mutex-guarded domain store for tests and local development.
// It enforces the same uniqueness rules as the Postgres schema.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.CustomDomain
	byOrg   map[uuid.UUID]uuid.UUID
	byHost  map[string]uuid.UUID
}

// NewInMemory constructs an empty in-memory domain store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[uuid.UUID]*models.CustomDomain),
		byOrg:  make(map[uuid.UUID]uuid.UUID),
		byHost: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, d *models.CustomDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	host := strings.ToLower(d.Domain)
	if _, exists := s.byOrg[d.OrganizationID]; exists {
		return ErrConflict
	}
	if _, exists := s.byHost[host]; exists {
		return ErrConflict
	}

	cp := *d
	s.byID[d.ID] = &cp
	s.byOrg[d.OrganizationID] = d.ID
	s.byHost[host] = d.ID
	return nil
}

func (s *InMemory) FindByOrg(_ context.Context, orgID uuid.UUID) (*models.CustomDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byOrg[orgID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) FindByDomain(_ context.Context, hostname string) (*models.CustomDomain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHost[strings.ToLower(hostname)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, d *models.CustomDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; !ok {
		return ErrNotFound
	}
	cp := *d
	s.byID[d.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byOrg, d.OrganizationID)
	delete(s.byHost, strings.ToLower(d.Domain))
	return nil
}
