package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"qrius/internal/cache/metrics"
)

// Redis is the production redirect cache. Entries are JSON-marshalled and
// carry a TTL as a safety net; correctness still relies on explicit
// invalidation from the mutation paths, not on expiry.
type Redis struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRedis constructs a Redis-backed redirect cache. A nil metrics instance
// disables instrumentation.
func NewRedis(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *Redis {
	return &Redis{client: client, ttl: ttl, metrics: m}
}

func (c *Redis) GetLink(ctx context.Context, code string) (*LinkEntry, error) {
	start := time.Now()
	val, err := c.client.Get(ctx, linkKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		c.metrics.RecordMiss("link", start)
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get link entry: %w", err)
	}

	var entry LinkEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("decode link entry: %w", err)
	}
	c.metrics.RecordHit("link", start)
	return &entry, nil
}

func (c *Redis) SetLink(ctx context.Context, code string, entry *LinkEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode link entry: %w", err)
	}
	if err := c.client.Set(ctx, linkKey(code), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set link entry: %w", err)
	}
	return nil
}

func (c *Redis) DeleteLink(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, linkKey(code)).Err(); err != nil {
		return fmt.Errorf("delete link entry: %w", err)
	}
	return nil
}

func (c *Redis) GetDomain(ctx context.Context, hostname string) (*DomainEntry, error) {
	start := time.Now()
	val, err := c.client.Get(ctx, domainKey(hostname)).Result()
	if errors.Is(err, redis.Nil) {
		c.metrics.RecordMiss("domain", start)
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get domain entry: %w", err)
	}

	var entry DomainEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("decode domain entry: %w", err)
	}
	c.metrics.RecordHit("domain", start)
	return &entry, nil
}

func (c *Redis) SetDomain(ctx context.Context, hostname string, entry *DomainEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode domain entry: %w", err)
	}
	if err := c.client.Set(ctx, domainKey(hostname), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set domain entry: %w", err)
	}
	return nil
}

func (c *Redis) DeleteDomain(ctx context.Context, hostname string) error {
	if err := c.client.Del(ctx, domainKey(hostname)).Err(); err != nil {
		return fmt.Errorf("delete domain entry: %w", err)
	}
	return nil
}
