// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package analytics implements the cache-aside analytics store.
//
// Reads try Redis first; computed snapshots are written through with a TTL,
// and writes to the view log invalidate the corresponding cache entry. The
// cache is fully optional: when Redis is absent at startup or fails later,
// every operation degrades to pass-through (Get reports absent, Put and
// Invalidate report failure) and the caller recomputes from the view log.
// A backend outage never becomes a user-visible failure.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/metrics"
	"github.com/streamvault/streamvault/internal/models"
)

// cacheKey builds the "analytics:<resourceType>:<resourceId>" key.
func cacheKey(mediaID string) string {
	return "analytics:media:" + mediaID
}

// Health states reported by HealthCheck.
const (
	StatusHealthy  = "healthy"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// Health is the cache backend liveness report. It informs observability
// only; a non-healthy status never blocks request handling.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// backend abstracts the Redis operations the cache needs, so tests can
// substitute an in-memory implementation.
type backend interface {
	get(ctx context.Context, key string) ([]byte, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	del(ctx context.Context, key string) (int64, error)
	ping(ctx context.Context) error
}

// redisBackend is the production backend.
type redisBackend struct {
	client *redis.Client
}

func (b *redisBackend) get(ctx context.Context, key string) ([]byte, error) {
	return b.client.Get(ctx, key).Bytes()
}

func (b *redisBackend) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *redisBackend) del(ctx context.Context, key string) (int64, error) {
	return b.client.Del(ctx, key).Result()
}

func (b *redisBackend) ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// errMiss marks a plain cache miss (key absent), as opposed to a backend
// failure.
var errMiss = errors.New("cache miss")

// Cache is the cache-aside wrapper around the Redis backend. The backend
// connection is shared across all concurrent requests; the wrapper itself
// holds no request-specific mutable state.
type Cache struct {
	backend backend // nil when the cache is disabled
	ttl     time.Duration
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewCache connects to Redis at the given URL. An empty URL, an unparseable
// URL, or a failed initial ping yields a disabled cache rather than an
// error: running without a cache backend is a supported mode, not a fault.
func NewCache(redisURL string, ttl, timeout time.Duration) *Cache {
	c := &Cache{ttl: ttl, timeout: timeout, breaker: newBreaker()}

	if redisURL == "" {
		logging.Info().Msg("Analytics cache disabled: no Redis URL configured")
		return c
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Warn().Err(err).Msg("Analytics cache disabled: invalid Redis URL")
		return c
	}
	opt.DialTimeout = timeout
	opt.ReadTimeout = timeout
	opt.WriteTimeout = timeout

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn().Err(err).Msg("Analytics cache disabled: Redis unreachable, running without cache")
		_ = client.Close()
		return c
	}

	logging.Info().Str("url", redisURL).Msg("Analytics cache connected")
	c.backend = &redisBackend{client: client}
	return c
}

// newCacheWithBackend wires an arbitrary backend. Used by tests.
func newCacheWithBackend(b backend, ttl, timeout time.Duration) *Cache {
	return &Cache{backend: b, ttl: ttl, timeout: timeout, breaker: newBreaker()}
}

// newBreaker builds the circuit breaker guarding backend calls. After five
// consecutive failures the breaker opens and calls short-circuit to the
// degraded path for thirty seconds, keeping a dead backend off the hot path.
func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "analytics-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Analytics cache circuit breaker state change")
		},
	})
}

// Enabled reports whether a backend connection was established at startup.
func (c *Cache) Enabled() bool {
	return c.backend != nil
}

// Get returns the cached snapshot for the asset, or absent on miss, on any
// backend error, or when the cache is disabled. Errors never escape to the
// caller; absence always means "go compute it".
func (c *Cache) Get(ctx context.Context, mediaID string) (*models.AnalyticsSnapshot, bool) {
	if c.backend == nil {
		return nil, false
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		data, err := c.backend.get(opCtx, cacheKey(mediaID))
		if errors.Is(err, redis.Nil) {
			// A miss is a normal outcome, not a backend failure; it must
			// not count toward opening the breaker.
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		logging.Warn().Err(err).Str("media_id", mediaID).Msg("Analytics cache get failed")
		return nil, false
	}
	if data == nil {
		metrics.CacheMisses.Inc()
		logging.Debug().Str("media_id", mediaID).Msg("Analytics cache miss")
		return nil, false
	}

	var snapshot models.AnalyticsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		logging.Warn().Err(err).Str("media_id", mediaID).Msg("Analytics cache entry corrupt")
		return nil, false
	}

	metrics.CacheHits.Inc()
	logging.Debug().Str("media_id", mediaID).Msg("Analytics cache hit")
	return &snapshot, true
}

// Put writes the snapshot through with the configured TTL and reports
// whether the write succeeded. A failed write is non-fatal: the caller
// already holds the freshly computed snapshot.
func (c *Cache) Put(ctx context.Context, mediaID string, snapshot *models.AnalyticsSnapshot) bool {
	if c.backend == nil {
		return false
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("put").Inc()
		logging.Warn().Err(err).Str("media_id", mediaID).Msg("Analytics snapshot marshal failed")
		return false
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return nil, c.backend.set(opCtx, cacheKey(mediaID), data, c.ttl)
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("put").Inc()
		logging.Warn().Err(err).Str("media_id", mediaID).Msg("Analytics cache put failed")
		return false
	}
	return true
}

// Invalidate deletes the cached entry for the asset, returning whether an
// entry was actually removed. False is not an error: the entry may have
// expired or never existed, and a degraded backend also reports false.
func (c *Cache) Invalidate(ctx context.Context, mediaID string) bool {
	if c.backend == nil {
		return false
	}

	deleted, err := c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		n, err := c.backend.del(opCtx, cacheKey(mediaID))
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return []byte{1}, nil
		}
		return nil, nil
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("invalidate").Inc()
		logging.Warn().Err(err).Str("media_id", mediaID).Msg("Analytics cache invalidation failed")
		return false
	}
	if deleted == nil {
		return false
	}

	metrics.CacheInvalidations.Inc()
	logging.Debug().Str("media_id", mediaID).Msg("Analytics cache invalidated")
	return true
}

// HealthCheck probes the backend. Distinct from the data path: a failure
// here only informs observability and never blocks request handling.
func (c *Cache) HealthCheck(ctx context.Context) Health {
	if c.backend == nil {
		return Health{
			Status:  StatusDisabled,
			Message: "Redis not available - running without cache",
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.backend.ping(opCtx); err != nil {
		return Health{Status: StatusError, Message: "Redis error: " + err.Error()}
	}
	return Health{Status: StatusHealthy, Message: "Redis connection active"}
}
