package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clipdeck/statistics-service/internal/domain"
)

// CampaignCacheRepository persists the locally-mirrored campaign_cache
// table: the sole local source of campaign title/status for the ranking
// and API read paths.
type CampaignCacheRepository struct {
	db *sqlx.DB
}

// NewCampaignCacheRepository creates a CampaignCacheRepository.
func NewCampaignCacheRepository(db *sqlx.DB) *CampaignCacheRepository {
	return &CampaignCacheRepository{db: db}
}

// Get fetches one campaign_cache row by campaign id.
func (r *CampaignCacheRepository) Get(ctx context.Context, campaignID string) (domain.CampaignCacheRow, bool, error) {
	var row domain.CampaignCacheRow
	const query = `SELECT id, title, status, synced_at FROM campaign_cache WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CampaignCacheRow{}, false, nil
	}
	if err != nil {
		return domain.CampaignCacheRow{}, false, fmt.Errorf("select campaign cache row: %w", err)
	}
	return row, true, nil
}

// Upsert inserts or refreshes one campaign_cache row, keyed on campaign id.
func (r *CampaignCacheRepository) Upsert(ctx context.Context, row domain.CampaignCacheRow) error {
	const query = `
		INSERT INTO campaign_cache (id, title, status, synced_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			title     = EXCLUDED.title,
			status    = EXCLUDED.status,
			synced_at = EXCLUDED.synced_at
	`
	_, err := r.db.ExecContext(ctx, query, row.CampaignID, row.Title, row.Status, row.SyncedAt)
	if err != nil {
		return fmt.Errorf("upsert campaign cache row: %w", err)
	}
	return nil
}

