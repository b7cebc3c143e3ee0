package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritytracking/claritytracking/internal/models"
)

func newTestCache(t *testing.T, ttl time.Duration) (*HealthCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewHealthCache(client, ttl, true), mr
}

func sampleMetrics() []*models.HealthMetric {
	return []*models.HealthMetric{
		{
			EventName:    "Purchase",
			EMQScore:     8.5,
			Status:       models.StatusHealthy,
			SampleCount:  42,
			LastReceived: time.Now().UTC().Truncate(time.Second),
		},
	}
}

func TestCacheMissThenHit(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	_, ok := c.Get(ctx, "website-1")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "website-1", sampleMetrics()))

	cached, ok := c.Get(ctx, "website-1")
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, "Purchase", cached[0].EventName)
	assert.Equal(t, 8.5, cached[0].EMQScore)
}

func TestCacheKeysAreTenantScoped(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "website-1", sampleMetrics()))

	_, ok := c.Get(ctx, "website-2")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "website-1", sampleMetrics()))
	require.NoError(t, c.Invalidate(ctx, "website-1"))

	_, ok := c.Get(ctx, "website-1")
	assert.False(t, ok)
}

func TestCacheEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "website-1", sampleMetrics()))

	mr.FastForward(31 * time.Second)

	_, ok := c.Get(ctx, "website-1")
	assert.False(t, ok)
}

func TestCacheCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)

	require.NoError(t, mr.Set("health:website-1", "{corrupt"))

	_, ok := c.Get(context.Background(), "website-1")
	assert.False(t, ok)
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := NewHealthCache(nil, 0, false)
	ctx := context.Background()

	assert.False(t, c.IsEnabled())
	assert.NoError(t, c.Set(ctx, "website-1", sampleMetrics()))
	assert.NoError(t, c.Invalidate(ctx, "website-1"))

	_, ok := c.Get(ctx, "website-1")
	assert.False(t, ok)
}

func TestCacheDownIsAMissNotAnError(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	mr.Close()

	_, ok := c.Get(context.Background(), "website-1")
	assert.False(t, ok)
}
