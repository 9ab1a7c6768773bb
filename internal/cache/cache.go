// Package cache implements the per-clip stats cache: a Redis-backed,
// advisory key/value store mapping (platform, videoId) to the last-known
// counter tuple with a one-hour TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

// TTL is the fixed lifetime of a cache entry, set on every write.
const TTL = time.Hour

// Store is the StatsCache contract: a cache miss or deserialization
// failure returns (zero, false) and is logged, never propagated — the
// cache is advisory and correctness never depends on it being warm.
type Store interface {
	Get(ctx context.Context, platform domain.Platform, videoID string) (domain.PlatformStats, bool)
	Set(ctx context.Context, platform domain.Platform, videoID string, stats domain.PlatformStats) error
}

// RedisStore is the Store implementation backed by go-redis.
type RedisStore struct {
	client *redis.Client
	log    logger.Logger
	m      *metrics.Metrics
}

// NewRedisStore creates a Redis-backed StatsCache.
func NewRedisStore(client *redis.Client, m *metrics.Metrics, log logger.Logger) *RedisStore {
	return &RedisStore{client: client, log: log, m: m}
}

// Key builds the fixed "stats:{platform}:{videoId}" cache key.
func Key(platform domain.Platform, videoID string) string {
	return fmt.Sprintf("stats:%s:%s", platform, videoID)
}

// Get returns the cached stats for (platform, videoId), if present and
// well-formed.
func (s *RedisStore) Get(ctx context.Context, platform domain.Platform, videoID string) (domain.PlatformStats, bool) {
	raw, err := s.client.Get(ctx, Key(platform, videoID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("cache get failed", logger.String("key", Key(platform, videoID)), logger.Error(err))
		}
		s.m.CacheMisses.Inc()
		return domain.PlatformStats{}, false
	}

	var stats domain.PlatformStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.log.Warn("cache entry deserialization failed",
			logger.String("key", Key(platform, videoID)), logger.Error(err))
		s.m.CacheMisses.Inc()
		return domain.PlatformStats{}, false
	}

	s.m.CacheHits.Inc()
	return stats, true
}

// Set writes stats under the fixed key with a 3600-second TTL.
func (s *RedisStore) Set(ctx context.Context, platform domain.Platform, videoID string, stats domain.PlatformStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	if err := s.client.Set(ctx, Key(platform, videoID), raw, TTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
