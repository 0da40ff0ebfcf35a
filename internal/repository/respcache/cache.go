// Package respcache is the read-through response cache for first-page
// search results. It is best-effort and eventually consistent: a missing or
// failing cache never blocks correctness, only freshness.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/agentauri/api.8004.dev-sub001/internal/db"
	"github.com/agentauri/api.8004.dev-sub001/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "resp_cache:"

// store is the consumer interface for the response cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores rendered search responses in a key-value store.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a response cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Key derives a deterministic cache key from the normalized request shape.
// Cursor-bearing requests never reach the cache, so the cursor is not part
// of the key.
func Key(query, filterFingerprint string, limit int, searchMode string) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(filterFingerprint))
	h.Write([]byte{0})
	h.Write([]byte(searchMode))
	h.Write([]byte{0, byte(limit), byte(limit >> 8)})
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Key derives the cache key for a request; see the package-level Key.
func (c *Cache) Key(query, filterFingerprint string, limit int, searchMode string) string {
	return Key(query, filterFingerprint, limit, searchMode)
}

// Get loads a cached response into v. A miss, a store error, or an
// undecodable entry all report false; the cache fails open.
func (c *Cache) Get(ctx context.Context, key string, v any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("Failed to decode cached response", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return false
	}

	c.incCache("hit")
	return true
}

// Set stores a response best-effort; failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
