// Package database holds sqlx/lib-pq repositories for the three tables
// this service owns: weekly_clip_ranking, weekly_campaign_ranking, and
// campaign_cache.
package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clipdeck/statistics-service/internal/domain"
)

// RankingsRepository persists weekly clip and campaign rankings.
type RankingsRepository struct {
	db *sqlx.DB
}

// NewRankingsRepository creates a RankingsRepository.
func NewRankingsRepository(db *sqlx.DB) *RankingsRepository {
	return &RankingsRepository{db: db}
}

// UpsertClipRanking inserts or updates one weekly_clip_ranking row on
// primary key (week_start, submission_id).
func (r *RankingsRepository) UpsertClipRanking(ctx context.Context, row domain.WeeklyClipRanking) error {
	const query = `
		INSERT INTO weekly_clip_ranking
			(week_start, week_end, submission_id, platform, views, likes, engagement, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (week_start, submission_id)
		DO UPDATE SET
			week_end   = EXCLUDED.week_end,
			platform   = EXCLUDED.platform,
			views      = EXCLUDED.views,
			likes      = EXCLUDED.likes,
			engagement = EXCLUDED.engagement,
			rank       = EXCLUDED.rank
	`
	_, err := r.db.ExecContext(ctx, query,
		row.WeekStart, row.WeekEnd, row.SubmissionID, row.Platform,
		row.Views, row.Likes, row.Engagement, row.Rank)
	if err != nil {
		return fmt.Errorf("upsert clip ranking: %w", err)
	}
	return nil
}

// UpsertCampaignRanking inserts or updates one weekly_campaign_ranking row
// on primary key (week_start, campaign_id).
func (r *RankingsRepository) UpsertCampaignRanking(ctx context.Context, row domain.WeeklyCampaignRanking) error {
	const query = `
		INSERT INTO weekly_campaign_ranking
			(week_start, week_end, campaign_id, total_views, total_likes, avg_engagement, clips_count, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (week_start, campaign_id)
		DO UPDATE SET
			week_end       = EXCLUDED.week_end,
			total_views    = EXCLUDED.total_views,
			total_likes    = EXCLUDED.total_likes,
			avg_engagement = EXCLUDED.avg_engagement,
			clips_count    = EXCLUDED.clips_count,
			rank           = EXCLUDED.rank
	`
	_, err := r.db.ExecContext(ctx, query,
		row.WeekStart, row.WeekEnd, row.CampaignID, row.TotalViews,
		row.TotalLikes, row.AvgEngagement, row.ClipsCount, row.Rank)
	if err != nil {
		return fmt.Errorf("upsert campaign ranking: %w", err)
	}
	return nil
}

// WeeklyClipRankings lists ranked clips for a week, optionally filtered by
// platform, ordered by rank, capped at limit.
func (r *RankingsRepository) WeeklyClipRankings(ctx context.Context, weekStart string, platform string, limit int) ([]domain.WeeklyClipRanking, error) {
	var rows []domain.WeeklyClipRanking
	query := `
		SELECT week_start, week_end, submission_id, platform, views, likes, engagement, rank
		FROM weekly_clip_ranking
		WHERE week_start = $1 AND ($2 = '' OR platform = $2)
		ORDER BY rank ASC
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, weekStart, platform, limit); err != nil {
		return nil, fmt.Errorf("select weekly clip rankings: %w", err)
	}
	return rows, nil
}

// WeeklyCampaignRankings lists ranked campaigns for a week, ordered by
// rank.
func (r *RankingsRepository) WeeklyCampaignRankings(ctx context.Context, weekStart string) ([]domain.WeeklyCampaignRanking, error) {
	var rows []domain.WeeklyCampaignRanking
	const query = `
		SELECT week_start, week_end, campaign_id, total_views, total_likes, avg_engagement, clips_count, rank
		FROM weekly_campaign_ranking
		WHERE week_start = $1
		ORDER BY rank ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, weekStart); err != nil {
		return nil, fmt.Errorf("select weekly campaign rankings: %w", err)
	}
	return rows, nil
}
