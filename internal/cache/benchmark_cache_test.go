package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/chainstats/internal/models"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisBenchmarkCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBenchmarkCache(client, ttl), mr
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRedisBenchmarkCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	start, end := day(2026, 1, 1), day(2026, 1, 31)

	sharpe := 1.85
	want := models.BenchmarkMetrics{Sharpe: &sharpe, Drawdown: -0.12, ProfitPct: 0.3}

	_, ok := c.Get(ctx, start, end)
	assert.False(t, ok)

	c.Set(ctx, start, end, want)

	got, ok := c.Get(ctx, start, end)
	require.True(t, ok)
	require.NotNil(t, got.Sharpe)
	assert.Equal(t, 1.85, *got.Sharpe)
	assert.Equal(t, -0.12, got.Drawdown)
	assert.Equal(t, 0.3, got.ProfitPct)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestRedisBenchmarkCache_NilSharpeSurvives(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	start, end := day(2026, 1, 1), day(2026, 1, 2)

	c.Set(ctx, start, end, models.BenchmarkMetrics{Sharpe: nil, Drawdown: 0, ProfitPct: 0})

	got, ok := c.Get(ctx, start, end)
	require.True(t, ok)
	assert.Nil(t, got.Sharpe, "undefined Sharpe must round-trip as null, not zero")
}

func TestRedisBenchmarkCache_DistinctWindowsDistinctKeys(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	c.Set(ctx, day(2026, 1, 1), day(2026, 1, 31), models.BenchmarkMetrics{ProfitPct: 0.1})
	c.Set(ctx, day(2026, 1, 1), day(2026, 2, 28), models.BenchmarkMetrics{ProfitPct: 0.2})

	jan, ok := c.Get(ctx, day(2026, 1, 1), day(2026, 1, 31))
	require.True(t, ok)
	feb, ok := c.Get(ctx, day(2026, 1, 1), day(2026, 2, 28))
	require.True(t, ok)
	assert.Equal(t, 0.1, jan.ProfitPct)
	assert.Equal(t, 0.2, feb.ProfitPct)
}

func TestRedisBenchmarkCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	start, end := day(2026, 1, 1), day(2026, 1, 31)

	c.Set(ctx, start, end, models.BenchmarkMetrics{ProfitPct: 0.1})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, start, end)
	assert.False(t, ok)
}

func TestRedisBenchmarkCache_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	start, end := day(2026, 1, 1), day(2026, 1, 31)

	require.NoError(t, mr.Set(c.key(start, end), "{not json"))

	_, ok := c.Get(ctx, start, end)
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisBenchmarkCache_RedisDownDegradesToMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	mr.Close()

	_, ok := c.Get(ctx, day(2026, 1, 1), day(2026, 1, 31))
	assert.False(t, ok)

	// Set must not panic or error out either.
	c.Set(ctx, day(2026, 1, 1), day(2026, 1, 31), models.BenchmarkMetrics{ProfitPct: 0.1})
}
