package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/models"
)

// RecommendationCache stores whole recommendation payloads behind a versioned
// key namespace. Invalidation is a namespace version bump, never a wildcard
// scan: every key embeds the namespace version plus the assistant config
// version, so stale entries simply become unreachable and expire by TTL.
type RecommendationCache interface {
	Key(ctx context.Context, configVersion time.Time, params models.RecommendationJobParams) string
	Get(ctx context.Context, key string) (*models.RecommendationPayload, bool, error)
	Set(ctx context.Context, key string, payload *models.RecommendationPayload, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

const (
	recKeyPrefix        = "assistant:rec"
	recNamespaceVersion = "assistant:rec:ver"
)

// RedisRecommendationCache is the Redis-backed implementation.
type RedisRecommendationCache struct {
	redis *RedisClient
}

// NewRedisRecommendationCache creates a recommendation cache on top of an
// existing Redis client.
func NewRedisRecommendationCache(redis *RedisClient) *RedisRecommendationCache {
	return &RedisRecommendationCache{redis: redis}
}

// Key builds the cache key for one generation request. A Redis failure while
// reading the namespace version falls back to version 0; the worst case is a
// spurious miss.
func (c *RedisRecommendationCache) Key(ctx context.Context, configVersion time.Time, params models.RecommendationJobParams) string {
	ver, err := c.redis.Get(ctx, recNamespaceVersion)
	if err != nil {
		ver = "0"
	}

	h := sha1.New()
	fmt.Fprintf(h, "%d|%d|", params.HorizonDays, params.RecentDays)
	if params.StartDate != nil {
		fmt.Fprintf(h, "%d", params.StartDate.Unix())
	}
	h.Write([]byte("|"))
	if params.EndDate != nil {
		fmt.Fprintf(h, "%d", params.EndDate.Unix())
	}

	return fmt.Sprintf("%s:v%s:%d:%s", recKeyPrefix, ver, configVersion.Unix(), hex.EncodeToString(h.Sum(nil)))
}

// Get retrieves a cached payload. A missing key is (nil, false, nil).
func (c *RedisRecommendationCache) Get(ctx context.Context, key string) (*models.RecommendationPayload, bool, error) {
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var payload models.RecommendationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached recommendations: %w", err)
	}
	return &payload, true, nil
}

// Set stores a payload with the configured TTL.
func (c *RedisRecommendationCache) Set(ctx context.Context, key string, payload *models.RecommendationPayload, ttl time.Duration) error {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	return c.redis.Set(ctx, key, string(raw), ttl)
}

// Invalidate bumps the namespace version, orphaning every existing key.
func (c *RedisRecommendationCache) Invalidate(ctx context.Context) error {
	if _, err := c.redis.Incr(ctx, recNamespaceVersion); err != nil {
		log.Warn().Err(err).Msg("Failed to bump recommendation cache namespace")
		return err
	}
	return nil
}

// NoopRecommendationCache is used when no Redis backend is available: every
// read misses and writes are dropped, so requests always recompute.
type NoopRecommendationCache struct{}

func (NoopRecommendationCache) Key(_ context.Context, configVersion time.Time, params models.RecommendationJobParams) string {
	return fmt.Sprintf("%s:disabled:%d", recKeyPrefix, configVersion.Unix())
}

func (NoopRecommendationCache) Get(context.Context, string) (*models.RecommendationPayload, bool, error) {
	return nil, false, nil
}

func (NoopRecommendationCache) Set(context.Context, string, *models.RecommendationPayload, time.Duration) error {
	return nil
}

func (NoopRecommendationCache) Invalidate(context.Context) error {
	return nil
}
