// Package campaign implements CampaignCache: a locally-mirrored table of
// campaign title/status, kept warm by campaign.created/status_changed
// events and refreshed from campaign-service on a stale or missing read.
package campaign

import (
	"context"
	"time"

	"github.com/clipdeck/statistics-service/internal/database"
	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

// cacheRepo is the subset of CampaignCacheRepository this package needs.
// *database.CampaignCacheRepository satisfies it.
type cacheRepo interface {
	Get(ctx context.Context, campaignID string) (domain.CampaignCacheRow, bool, error)
	Upsert(ctx context.Context, row domain.CampaignCacheRow) error
}

// campaignMetadataFetcher is the subset of CampaignServiceClient this
// package needs. *peers.CampaignServiceClient satisfies it.
type campaignMetadataFetcher interface {
	GetCampaign(ctx context.Context, campaignID string) (peers.CampaignMetadata, error)
}

// Cache is the CampaignCache component.
type Cache struct {
	repo           cacheRepo
	campaignClient campaignMetadataFetcher
	log            logger.Logger
}

// New creates a Cache.
func New(repo *database.CampaignCacheRepository, campaignClient *peers.CampaignServiceClient, log logger.Logger) *Cache {
	return &Cache{repo: repo, campaignClient: campaignClient, log: log}
}

// GetOrPull returns campaignID's cached row if present and not stale;
// otherwise it pulls fresh metadata from campaign-service and upserts
// before returning.
func (c *Cache) GetOrPull(ctx context.Context, campaignID string) (domain.CampaignCacheRow, error) {
	row, ok, err := c.repo.Get(ctx, campaignID)
	if err != nil {
		return domain.CampaignCacheRow{}, err
	}
	if ok && !row.IsStale(time.Now()) {
		return row, nil
	}

	meta, err := c.campaignClient.GetCampaign(ctx, campaignID)
	if err != nil {
		return domain.CampaignCacheRow{}, err
	}

	fresh := domain.CampaignCacheRow{
		CampaignID: meta.CampaignID,
		Title:      meta.Title,
		Status:     meta.Status,
		SyncedAt:   time.Now(),
	}
	if err := c.repo.Upsert(ctx, fresh); err != nil {
		c.log.Warn("campaign cache write failed", logger.String("campaign_id", campaignID), logger.Error(err))
	}
	return fresh, nil
}

// HandleCampaignCreated upserts CampaignCache from a campaign.created
// event: title from the payload, status forced to ACTIVE per the event's
// semantics.
func (c *Cache) HandleCampaignCreated(ctx context.Context, campaignID, title string) error {
	return c.repo.Upsert(ctx, domain.CampaignCacheRow{
		CampaignID: campaignID,
		Title:      title,
		Status:     "ACTIVE",
		SyncedAt:   time.Now(),
	})
}

// HandleCampaignStatusChanged upserts CampaignCache's status column from a
// campaign.status_changed event, preserving the cached title when present.
func (c *Cache) HandleCampaignStatusChanged(ctx context.Context, campaignID, newStatus string) error {
	title := ""
	if existing, ok, err := c.repo.Get(ctx, campaignID); err == nil && ok {
		title = existing.Title
	}
	return c.repo.Upsert(ctx, domain.CampaignCacheRow{
		CampaignID: campaignID,
		Title:      title,
		Status:     newStatus,
		SyncedAt:   time.Now(),
	})
}
