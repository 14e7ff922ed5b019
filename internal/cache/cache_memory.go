package cache

import (
	"context"
	"strings"
	"sync"
)

// InMemory is a map-backed redirect cache for tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	links   map[string]LinkEntry
	domains map[string]DomainEntry
}

// NewInMemory constructs an empty in-memory redirect cache.
func NewInMemory() *InMemory {
	return &InMemory{
		links:   make(map[string]LinkEntry),
		domains: make(map[string]DomainEntry),
	}
}

func (c *InMemory) GetLink(_ context.Context, code string) (*LinkEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.links[code]
	if !ok {
		return nil, ErrMiss
	}
	cp := entry
	return &cp, nil
}

func (c *InMemory) SetLink(_ context.Context, code string, entry *LinkEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[code] = *entry
	return nil
}

func (c *InMemory) DeleteLink(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.links, code)
	return nil
}

func (c *InMemory) GetDomain(_ context.Context, hostname string) (*DomainEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.domains[strings.ToLower(hostname)]
	if !ok {
		return nil, ErrMiss
	}
	cp := entry
	return &cp, nil
}

func (c *InMemory) SetDomain(_ context.Context, hostname string, entry *DomainEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domains[strings.ToLower(hostname)] = *entry
	return nil
}

func (c *InMemory) DeleteDomain(_ context.Context, hostname string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.domains, strings.ToLower(hostname))
	return nil
}
