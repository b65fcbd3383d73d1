package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/harborline/backend-brokerage/internal/obs"
)

// Cache wraps Redis helpers for cached job records.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(jobRef, period string) string {
	return "job:" + jobRef + ":" + period
}

// GetJSON unmarshals a cached record. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// CachedProvider decorates a Provider with a Redis read-through cache.
// Cache errors never fail a lookup; the upstream provider remains the
// source of truth.
type CachedProvider struct {
	Inner Provider
	Cache *Cache
	Log   zerolog.Logger
}

// GetJob returns the cached record when present, falling back to the inner
// provider and populating the cache on success.
func (p *CachedProvider) GetJob(ctx context.Context, jobRef, period string) (Record, error) {
	key := cacheKey(jobRef, period)
	var cached Record
	hit, err := p.Cache.GetJSON(ctx, key, &cached)
	if err != nil {
		p.Log.Warn().Err(err).Str("job_ref", jobRef).Msg("job_cache_read_failed")
	}
	if hit {
		if obs.JobLookupsTotal != nil {
			obs.JobLookupsTotal.WithLabelValues("cache", "ok").Inc()
		}
		return cached, nil
	}
	rec, err := p.Inner.GetJob(ctx, jobRef, period)
	if err != nil {
		if obs.JobLookupsTotal != nil {
			obs.JobLookupsTotal.WithLabelValues("upstream", "error").Inc()
		}
		return Record{}, err
	}
	if obs.JobLookupsTotal != nil {
		obs.JobLookupsTotal.WithLabelValues("upstream", "ok").Inc()
	}
	if err := p.Cache.SetJSON(ctx, key, rec); err != nil {
		p.Log.Warn().Err(err).Str("job_ref", jobRef).Msg("job_cache_write_failed")
	}
	return rec, nil
}
