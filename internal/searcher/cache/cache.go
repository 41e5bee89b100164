// Package cache implements the Redis-backed query cache for name searches.
// Cache keys hash the normalized query so equivalent spellings share an
// entry; concurrent misses for the same key are collapsed with singleflight,
// and a circuit breaker keeps a struggling Redis from slowing the search
// path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/recorddex/recorddex/internal/searcher"
	"github.com/recorddex/recorddex/internal/store/texttrie"
	"github.com/recorddex/recorddex/pkg/config"
	pkgredis "github.com/recorddex/recorddex/pkg/redis"
	"github.com/recorddex/recorddex/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// QueryCache caches search results in Redis with a TTL.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache over the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for the query, if present. Redis failures
// count as misses; repeated failures trip the breaker and skip Redis
// entirely until it recovers.
func (c *QueryCache) Get(ctx context.Context, kind, query string, limit int) (*searcher.Result, bool) {
	key := c.buildKey(kind, query, limit)

	var data string
	err := c.breaker.Execute(func() error {
		var getErr error
		data, getErr = c.client.Get(ctx, key)
		if pkgredis.IsNilError(getErr) {
			data = ""
			return nil
		}
		return getErr
	})
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if data == "" {
		c.misses.Add(1)
		return nil, false
	}

	var result searcher.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

// Set stores a result under the query's cache key.
func (c *QueryCache) Set(ctx context.Context, kind, query string, limit int, result *searcher.Result) {
	key := c.buildKey(kind, query, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and caches it, with
// singleflight collapsing concurrent misses for the same key. The returned
// bool reports whether the result came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	kind, query string,
	limit int,
	computeFn func() (*searcher.Result, error),
) (*searcher.Result, bool, error) {
	if result, ok := c.Get(ctx, kind, query, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(kind, query, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, kind, query, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, kind, query, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*searcher.Result), false, nil
}

// Invalidate removes every cached search result. Called when new records
// land, since any prefix may have gained a match.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query so "Alice", "alice", and " ALICE "
// share one entry.
func (c *QueryCache) buildKey(kind, query string, limit int) string {
	raw := fmt.Sprintf("%s:%s:limit=%d", kind, texttrie.Normalize(query), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
