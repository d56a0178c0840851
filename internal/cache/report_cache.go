// Package cache stores finished analysis reports keyed by a fingerprint of the
// request. An in-process LRU answers repeat requests from the same replica; an
// optional Redis tier shares reports between replicas and sits behind a
// circuit breaker so a slow or dead Redis never delays an analysis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/presentation-quality-server/internal/domain"
)

const keyPrefix = "pqs:report:"

// ReportCache implements domain.ReportCache.
type ReportCache struct {
	logger  *logrus.Logger
	local   *expirable.LRU[string, *domain.Report]
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ domain.ReportCache = (*ReportCache)(nil)

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Entries      int    `json:"entries"`
	RedisEnabled bool   `json:"redisEnabled"`
	BreakerState string `json:"breakerState,omitempty"`
}

// Key fingerprints an analysis request. Slide fields marshal with sorted keys,
// so field order in the request does not change the key.
func Key(slides []domain.Slide, presentationType string) (string, error) {
	payload, err := json.Marshal(struct {
		PresentationType string         `json:"presentationType"`
		Slides           []domain.Slide `json:"slides"`
	}{presentationType, slides})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint request: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// New creates a report cache. When cfg.RedisURL is set but Redis cannot be
// reached, the cache logs a warning and runs with the local tier only.
func New(cfg domain.CacheConfig, logger *logrus.Logger) (*ReportCache, error) {
	size := cfg.MaxItems
	if size <= 0 {
		size = 512
	}

	c := &ReportCache{
		logger: logger,
		local:  expirable.NewLRU[string, *domain.Report](size, nil, cfg.TTL),
		ttl:    cfg.TTL,
	}

	if cfg.RedisURL == "" {
		return c, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	opts.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, report cache running in-process only")
		_ = client.Close()
		return c, nil
	}

	c.attachRedis(client)
	logger.WithField("addr", opts.Addr).Info("Report cache Redis tier enabled")
	return c, nil
}

func (c *ReportCache) attachRedis(client *redis.Client) {
	c.redis = client
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "report-cache-redis",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// Get returns a cached report. Redis errors count as a miss.
func (c *ReportCache) Get(ctx context.Context, key string) (*domain.Report, bool) {
	if report, ok := c.local.Get(key); ok {
		c.hits.Add(1)
		return report, true
	}

	if c.redis != nil {
		report, err := c.getRemote(ctx, key)
		if err != nil {
			c.logger.WithError(err).WithField("key", key).Debug("Redis report lookup failed")
		}
		if report != nil {
			c.local.Add(key, report)
			c.hits.Add(1)
			return report, true
		}
	}

	c.misses.Add(1)
	return nil, false
}

func (c *ReportCache) getRemote(ctx context.Context, key string) (*domain.Report, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		val, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return val, err
	})
	if err != nil || res == nil {
		return nil, err
	}

	var report domain.Report
	if err := json.Unmarshal(res.([]byte), &report); err != nil {
		c.redis.Del(ctx, keyPrefix+key)
		return nil, fmt.Errorf("corrupt cached report: %w", err)
	}
	return &report, nil
}

// Set stores a report in every tier. Failures are logged and swallowed.
func (c *ReportCache) Set(ctx context.Context, key string, report *domain.Report) {
	c.local.Add(key, report)

	if c.redis == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal report for cache")
		return
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.redis.Set(ctx, keyPrefix+key, data, c.ttl).Err()
	})
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Debug("Redis report store failed")
	}
}

// Stats returns hit/miss counters and tier state.
func (c *ReportCache) Stats() Stats {
	s := Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Entries:      c.local.Len(),
		RedisEnabled: c.redis != nil,
	}
	if c.breaker != nil {
		s.BreakerState = c.breaker.State().String()
	}
	return s
}

// Purge empties the local tier.
func (c *ReportCache) Purge() {
	c.local.Purge()
}

// Close releases the Redis connection, if any.
func (c *ReportCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
