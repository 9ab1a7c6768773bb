// Package rankings implements the two weekly ranking calculations: a
// per-clip leaderboard and a per-campaign leaderboard, each sorted,
// dense-ranked, and upserted independently.
package rankings

import (
	"context"
	"sort"
	"time"

	"github.com/clipdeck/statistics-service/internal/database"
	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

// Engine runs the weekly ranking calculations.
type Engine struct {
	clipClient     *peers.ClipServiceClient
	campaignClient *peers.CampaignServiceClient
	repo           *database.RankingsRepository
	m              *metrics.Metrics
	log            logger.Logger
}

// New creates an Engine.
func New(clipClient *peers.ClipServiceClient, campaignClient *peers.CampaignServiceClient, repo *database.RankingsRepository, m *metrics.Metrics, log logger.Logger) *Engine {
	return &Engine{clipClient: clipClient, campaignClient: campaignClient, repo: repo, m: m, log: log}
}

// WeekBounds returns the ISO week (Monday-Sunday) containing now.
func WeekBounds(now time.Time) (weekStart, weekEnd time.Time) {
	now = now.UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is day 7 in ISO week numbering.
	}
	monday := now.AddDate(0, 0, -(weekday - 1))
	weekStart = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	weekEnd = weekStart.AddDate(0, 0, 6)
	return weekStart, weekEnd
}

// CalculateClipRankings fetches approved clips for the ISO week containing
// now, ranks them, and upserts every row. An empty input returns silently.
func (e *Engine) CalculateClipRankings(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() { e.m.RankingRunDuration.WithLabelValues("clips").Observe(time.Since(start).Seconds()) }()

	weekStart, weekEnd := WeekBounds(now)

	clips, err := e.clipClient.ApprovedForRankings(ctx, weekStart, weekEnd)
	if err != nil {
		return err
	}
	if len(clips) == 0 {
		return nil
	}

	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].Views != clips[j].Views {
			return clips[i].Views > clips[j].Views
		}
		return clips[i].Engagement() > clips[j].Engagement()
	})

	rank := denseRanks(len(clips), func(i, j int) bool {
		return clips[i].Views == clips[j].Views && clips[i].Engagement() == clips[j].Engagement()
	})

	for i, clip := range clips {
		row := domain.WeeklyClipRanking{
			WeekStart:    weekStart,
			WeekEnd:      weekEnd,
			SubmissionID: clip.SubmissionID,
			Platform:     string(clip.Platform),
			Views:        clip.Views,
			Likes:        clip.Likes,
			Engagement:   clip.Engagement(),
			Rank:         rank[i],
		}
		if err := e.repo.UpsertClipRanking(ctx, row); err != nil {
			return err
		}
	}

	e.log.Info("weekly clip rankings calculated",
		logger.Int("count", len(clips)), logger.String("week_start", weekStart.Format(time.RFC3339)))
	return nil
}

// CalculateCampaignRankings fetches campaign aggregates for the ISO week
// containing now, ranks them, and upserts every row. An empty input
// returns silently.
func (e *Engine) CalculateCampaignRankings(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() { e.m.RankingRunDuration.WithLabelValues("campaigns").Observe(time.Since(start).Seconds()) }()

	weekStart, weekEnd := WeekBounds(now)

	campaigns, err := e.campaignClient.StatsForRankings(ctx, weekStart, weekEnd)
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		return nil
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		if campaigns[i].TotalViews != campaigns[j].TotalViews {
			return campaigns[i].TotalViews > campaigns[j].TotalViews
		}
		return campaigns[i].AvgEngagement() > campaigns[j].AvgEngagement()
	})

	rank := denseRanks(len(campaigns), func(i, j int) bool {
		return campaigns[i].TotalViews == campaigns[j].TotalViews &&
			campaigns[i].AvgEngagement() == campaigns[j].AvgEngagement()
	})

	for i, campaign := range campaigns {
		row := domain.WeeklyCampaignRanking{
			WeekStart:     weekStart,
			WeekEnd:       weekEnd,
			CampaignID:    campaign.CampaignID,
			TotalViews:    campaign.TotalViews,
			TotalLikes:    campaign.TotalLikes,
			AvgEngagement: campaign.AvgEngagement(),
			ClipsCount:    campaign.ClipsCount,
			Rank:          rank[i],
		}
		if err := e.repo.UpsertCampaignRanking(ctx, row); err != nil {
			return err
		}
	}

	e.log.Info("weekly campaign rankings calculated",
		logger.Int("count", len(campaigns)), logger.String("week_start", weekStart.Format(time.RFC3339)))
	return nil
}

// denseRanks assigns 1-based dense ranks to an already-sorted sequence of
// length n: ties (as reported by equal) share a rank, and the next distinct
// value gets the next consecutive rank (no gaps).
func denseRanks(n int, equal func(i, j int) bool) []int {
	ranks := make([]int, n)
	if n == 0 {
		return ranks
	}
	rank := 1
	ranks[0] = rank
	for i := 1; i < n; i++ {
		if !equal(i, i-1) {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}
