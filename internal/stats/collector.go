// Package stats implements the StatsCollector: the component that fetches
// fresh counters via a platform adapter, warms the stats cache, and
// publishes stats.updated — plus the batch driver used by the hourly
// refresh tick and the staff batch-refresh endpoint.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/platform/adapters"
	"github.com/clipdeck/statistics-service/internal/platform/logger"

	statscache "github.com/clipdeck/statistics-service/internal/cache"
)

// InterClipDelay is the fixed pacing applied after every clip processed by
// BatchRefresh, regardless of outcome, so a refresh sweep never hammers
// upstream platform APIs.
const InterClipDelay = 100 * time.Millisecond

// MaxBatchSize is the largest clip list the callers (the batch-refresh HTTP
// handler, the scheduler) pass to BatchRefresh; BatchRefresh itself does
// not check the length.
const MaxBatchSize = 500

// BatchResult tallies the outcome of a BatchRefresh run.
type BatchResult struct {
	SuccessCount int
	FailCount    int
}

// adapterLookup resolves the Adapter for a platform. *adapters.Registry
// satisfies this; tests can supply a fake without touching the network.
type adapterLookup interface {
	Get(platform domain.Platform) (adapters.Adapter, error)
}

// Collector is the StatsCollector.
type Collector struct {
	adapters  adapterLookup
	cache     statscache.Store
	publisher events.Publisher
	m         *metrics.Metrics
	log       logger.Logger
}

// New creates a Collector.
func New(registry *adapters.Registry, cache statscache.Store, publisher events.Publisher, m *metrics.Metrics, log logger.Logger) *Collector {
	return &Collector{adapters: registry, cache: cache, publisher: publisher, m: m, log: log}
}

// RefreshClipStats fetches fresh counters for (platform, videoId), warms
// the cache, publishes stats.updated, and returns the fetched tuple.
// Adapter errors propagate to the caller; cache and publish failures are
// logged and swallowed.
func (c *Collector) RefreshClipStats(ctx context.Context, submissionID string, platform domain.Platform, videoID string) (domain.PlatformStats, error) {
	adapter, err := c.adapters.Get(platform)
	if err != nil {
		return domain.PlatformStats{}, err
	}

	fetchStart := time.Now()
	fresh, err := adapter.Fetch(ctx, videoID)
	c.m.PlatformFetchDuration.WithLabelValues(string(platform)).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		c.m.PlatformFetchErrors.WithLabelValues(string(platform)).Inc()
		return domain.PlatformStats{}, fmt.Errorf("fetch %s stats: %w", platform, err)
	}

	if err := c.cache.Set(ctx, platform, videoID, fresh); err != nil {
		c.log.Warn("cache write failed after refresh",
			logger.String("submission_id", submissionID), logger.Error(err))
	}

	c.publisher.PublishAsync(events.RoutingStatsUpdated, events.StatsUpdatedPayload{
		ClipID:     submissionID,
		Views:      fresh.Views,
		Likes:      fresh.Likes,
		Comments:   fresh.Comments,
		Shares:     fresh.Shares,
		Engagement: fresh.Engagement(),
	})

	return fresh, nil
}

// GetOrFetchStats returns the cached tuple when warm, otherwise delegates
// to RefreshClipStats.
func (c *Collector) GetOrFetchStats(ctx context.Context, submissionID string, platform domain.Platform, videoID string) (domain.PlatformStats, error) {
	if cached, ok := c.cache.Get(ctx, platform, videoID); ok {
		return cached, nil
	}
	return c.RefreshClipStats(ctx, submissionID, platform, videoID)
}

// BatchRefresh sequentially refreshes every clip in clips, pausing
// InterClipDelay after each one regardless of outcome. Per-clip errors are
// counted, not propagated, so one bad clip never aborts the sweep.
func (c *Collector) BatchRefresh(ctx context.Context, clips []domain.ClipRef) BatchResult {
	var result BatchResult

	for _, clip := range clips {
		_, err := c.RefreshClipStats(ctx, clip.SubmissionID, clip.Platform, clip.VideoID)
		if err != nil {
			result.FailCount++
			c.log.Warn("batch refresh clip failed",
				logger.String("submission_id", clip.SubmissionID),
				logger.String("platform", string(clip.Platform)),
				logger.Error(err))
		} else {
			result.SuccessCount++
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(InterClipDelay):
		}
	}

	return result
}
