package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claritytracking/claritytracking/internal/metrics"
	"github.com/claritytracking/claritytracking/internal/models"
)

// HealthCache keeps recently computed health metrics in Redis so dashboard
// polling does not rescan a website's event window on every request. Entries
// are invalidated on ingest and expire on their own, so a disabled or
// unreachable cache only costs recomputation, never correctness.
type HealthCache struct {
	redis   *redis.Client
	ttl     time.Duration
	enabled bool
}

// NewHealthCache creates a cache around the given client. A nil client or
// enabled=false yields a no-op cache.
func NewHealthCache(client *redis.Client, ttl time.Duration, enabled bool) *HealthCache {
	return &HealthCache{
		redis:   client,
		ttl:     ttl,
		enabled: enabled,
	}
}

// IsEnabled returns whether the cache is active.
func (c *HealthCache) IsEnabled() bool {
	return c.enabled && c.redis != nil
}

func (c *HealthCache) key(websiteID string) string {
	return "health:" + websiteID
}

// Get returns the cached metrics for a website, or (nil, false) on miss.
// Redis errors are treated as misses.
func (c *HealthCache) Get(ctx context.Context, websiteID string) ([]*models.HealthMetric, bool) {
	if !c.IsEnabled() {
		return nil, false
	}

	data, err := c.redis.Get(ctx, c.key(websiteID)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var cached []*models.HealthMetric
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return cached, true
}

// Set stores computed metrics with the configured TTL.
func (c *HealthCache) Set(ctx context.Context, websiteID string, healthMetrics []*models.HealthMetric) error {
	if !c.IsEnabled() {
		return nil
	}

	data, err := json.Marshal(healthMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal health metrics: %w", err)
	}

	if err := c.redis.Set(ctx, c.key(websiteID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache health metrics: %w", err)
	}

	return nil
}

// Invalidate drops the cached metrics for a website. Called after every
// accepted event write so reads never serve metrics staler than the TTL.
func (c *HealthCache) Invalidate(ctx context.Context, websiteID string) error {
	if !c.IsEnabled() {
		return nil
	}

	if err := c.redis.Del(ctx, c.key(websiteID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate health cache: %w", err)
	}

	return nil
}
