// Package cache provides the read-through cache for public job listings.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hirely/hirely/internal/db"
	"github.com/redis/go-redis/v9"
)

const (
	// GenerationKey holds the counter that namespaces every listing entry
	GenerationKey = "hirely:jobs:gen"

	// DefaultTTL bounds how long an entry outlives an invalidation
	DefaultTTL = 2 * time.Minute

	keyPrefix = "hirely:jobs:"
)

// JobListCache caches serialized job listing pages
type JobListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context) error
	Close() error
}

// KeyFor derives a stable cache key from listing filters. Filters that
// normalize to the same values share a key.
func KeyFor(f db.JobFilters) string {
	f = db.NormalizeJobFilters(f)

	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("q", f.Query)
	set("location", f.Location)
	set("employment_type", f.EmploymentType)
	set("work_mode", f.WorkMode)
	set("status", f.Status)
	if f.CompanyID != nil {
		v.Set("company_id", f.CompanyID.String())
	}
	if f.EmployerID != nil {
		v.Set("employer_id", f.EmployerID.String())
	}
	if f.MinSalary > 0 {
		v.Set("min_salary", strconv.Itoa(f.MinSalary))
	}
	v.Set("limit", strconv.Itoa(f.Limit))
	v.Set("offset", strconv.Itoa(f.Offset))

	sum := sha256.Sum256([]byte(v.Encode()))
	return hex.EncodeToString(sum[:16])
}

// -----------------------------------------------------------------------------
// Redis
// -----------------------------------------------------------------------------

// RedisCache stores entries under the current generation. Invalidate bumps
// the generation, which orphans older entries until their TTL expires.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at redisURL and pings it
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func entryKey(gen int64, key string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

// Get returns the entry for key in the current generation
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	data, err := c.client.Get(ctx, entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return data, true, nil
}

// Set stores value under key in the current generation
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, entryKey(gen, key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate starts a new generation
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, GenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate job cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// -----------------------------------------------------------------------------
// Noop
// -----------------------------------------------------------------------------

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, []byte) error         { return nil }
func (NoopCache) Invalidate(context.Context) error                  { return nil }
func (NoopCache) Close() error                                      { return nil }
