// Package searchcache caches search service responses in a key-value store.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/geolens/internal/db"
	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/domain/search/result"
)

var cacheKeyPrefix = domain.KeyPrefix + "search_cache:"

// searcher is the decorated search client.
type searcher interface {
	Search(ctx context.Context, q query.Query) ([]result.Result, error)
}

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedSearcher serves repeated queries from the store.
// Concurrent misses for the same query share one upstream request.
// Store failures are logged and never fail a search.
type CachedSearcher struct {
	inner      searcher
	store      store
	ttl        time.Duration
	flights    singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"shared"), passed explicitly.
func New(
	inner searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns cached results for q or asks the inner searcher and caches its answer.
func (c *CachedSearcher) Search(ctx context.Context, q query.Query) ([]result.Result, error) {
	key, err := cacheKey(q)
	if err != nil {
		c.logger.Warn("Failed to build search cache key", zap.Error(err))
		return c.inner.Search(ctx, q) //nolint:wrapcheck // transparent decorator
	}

	if results, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return results, nil
	}

	c.incCache("miss")

	// The flight outlives any single caller; the HTTP client timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (any, error) {
		results, err := c.inner.Search(flightCtx, q)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by each caller
		}
		c.putToCache(flightCtx, key, results)
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("search: %w: %w", domain.ErrTransport, ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.incCache("shared")
		}
		if res.Err != nil {
			return nil, fmt.Errorf("search: %w", res.Err)
		}
		results, _ := res.Val.([]result.Result)
		return results, nil
	}
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the canonical JSON form of the query.
func cacheKey(q query.Query) (string, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal query: %w", err)
	}
	h := sha256.Sum256(payload)
	return cacheKeyPrefix + hex.EncodeToString(h[:]), nil
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) ([]result.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var results []result.Result
	if err := json.Unmarshal(data, &results); err != nil {
		c.logger.Warn("Failed to parse cached search response", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached search response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return results, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, results []result.Result) {
	if results == nil {
		results = []result.Result{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("Failed to encode search response", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search response", zap.String("key", key), zap.Error(err))
	}
}
