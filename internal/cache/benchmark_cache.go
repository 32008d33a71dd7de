package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/chainstats/internal/models"
)

// benchmarkEntry is the serialized cache payload with bookkeeping metadata.
type benchmarkEntry struct {
	Metrics  models.BenchmarkMetrics `json:"metrics"`
	CachedAt time.Time               `json:"cached_at"`
}

// BenchmarkCacheStats is a snapshot of the cache performance counters.
type BenchmarkCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

type cacheCounters struct {
	mu     sync.Mutex
	hits   int64
	misses int64
	sets   int64
}

// RedisBenchmarkCache memoizes benchmark metrics in Redis keyed on the date
// window. Benchmark metrics are a pure function of (start, end), so a cached
// entry never goes stale within its TTL; the TTL exists only to bound keyspace
// growth. All operations are best-effort: Redis failures degrade to a miss and
// never propagate to the caller.
type RedisBenchmarkCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *cacheCounters
	prefix string
}

// NewRedisBenchmarkCache creates a new Redis-backed benchmark cache.
func NewRedisBenchmarkCache(redisClient *redis.Client, ttl time.Duration) *RedisBenchmarkCache {
	return &RedisBenchmarkCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &cacheCounters{},
		prefix: "benchmark_cache:",
	}
}

func (c *RedisBenchmarkCache) key(start, end time.Time) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

// Get retrieves benchmark metrics for a window, reporting whether the lookup
// hit.
func (c *RedisBenchmarkCache) Get(ctx context.Context, start, end time.Time) (models.BenchmarkMetrics, bool) {
	data, err := c.redis.Get(ctx, c.key(start, end)).Result()
	if err == redis.Nil {
		c.miss()
		return models.BenchmarkMetrics{}, false
	}
	if err != nil {
		logrus.WithError(err).Warn("Redis error reading benchmark cache")
		c.miss()
		return models.BenchmarkMetrics{}, false
	}

	var entry benchmarkEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		logrus.WithError(err).Warn("Corrupt benchmark cache entry, treating as miss")
		c.miss()
		return models.BenchmarkMetrics{}, false
	}

	c.stats.mu.Lock()
	c.stats.hits++
	c.stats.mu.Unlock()
	return entry.Metrics, true
}

// Set stores benchmark metrics for a window.
func (c *RedisBenchmarkCache) Set(ctx context.Context, start, end time.Time, m models.BenchmarkMetrics) {
	payload, err := json.Marshal(benchmarkEntry{Metrics: m, CachedAt: time.Now().UTC()})
	if err != nil {
		logrus.WithError(err).Warn("Failed to serialize benchmark cache entry")
		return
	}
	if err := c.redis.Set(ctx, c.key(start, end), payload, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Redis error writing benchmark cache")
		return
	}
	c.stats.mu.Lock()
	c.stats.sets++
	c.stats.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *RedisBenchmarkCache) Stats() BenchmarkCacheStats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	return BenchmarkCacheStats{Hits: c.stats.hits, Misses: c.stats.misses, Sets: c.stats.sets}
}

func (c *RedisBenchmarkCache) miss() {
	c.stats.mu.Lock()
	c.stats.misses++
	c.stats.mu.Unlock()
}
