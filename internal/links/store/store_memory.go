package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"qrius/internal/links/models"
)

// InMemory is the in-memory link store used by tests and local development.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*models.Link
	byCode map[string]*models.Link
}

// NewInMemory constructs an empty in-memory link store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[uuid.UUID]*models.Link),
		byCode: make(map[string]*models.Link),
	}
}

func (s *InMemory) Create(_ context.Context, l *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCode[l.ShortCode]; exists {
		return ErrConflict
	}
	cp := *l
	s.byID[cp.ID] = &cp
	s.byCode[cp.ShortCode] = &cp
	return nil
}

func (s *InMemory) FindByCode(_ context.Context, shortCode string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.byCode[shortCode]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *InMemory) ListByOrg(_ context.Context, orgID uuid.UUID) ([]*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var links []*models.Link
	for _, l := range s.byID {
		if l.OrganizationID != nil && *l.OrganizationID == orgID {
			cp := *l
			links = append(links, &cp)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (s *InMemory) Update(_ context.Context, l *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[l.ID]; !ok {
		return ErrNotFound
	}
	cp := *l
	s.byID[cp.ID] = &cp
	s.byCode[cp.ShortCode] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byCode, l.ShortCode)
	delete(s.byID, id)
	return nil
}
