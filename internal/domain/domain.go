// Package domain holds the data model shared across the statistics service:
// platform counters, cached entries, history samples, bot flags, and ranking
// rows.
package domain

import "time"

// Platform identifies one of the supported social video platforms.
type Platform string

// Supported platforms.
const (
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTwitter   Platform = "TWITTER"
)

// PlatformStats is the normalized counter tuple every adapter produces.
type PlatformStats struct {
	Views        int64      `json:"views"`
	Likes        int64      `json:"likes"`
	Comments     int64      `json:"comments"`
	Shares       int64      `json:"shares"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Title        string     `json:"title,omitempty"`
	Author       string     `json:"author,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
}

// Engagement computes (likes+comments)/views, or 0 when views is 0.
func (s PlatformStats) Engagement() float64 {
	if s.Views <= 0 {
		return 0
	}
	return float64(s.Likes+s.Comments) / float64(s.Views)
}

// StatsHistoryEntry is one sample in a clip's engagement time series, as
// supplied by the clip-service. Histories are ordered newest-first.
type StatsHistoryEntry struct {
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Shares      int64     `json:"shares"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// FlagType identifies which bot-detection rule produced a BotFlag.
type FlagType string

// Flag types, one per detection rule in the bot detector.
const (
	FlagViewsSpike      FlagType = "VIEWS_SPIKE"
	FlagLikesSpike      FlagType = "LIKES_SPIKE"
	FlagCommentsSpike   FlagType = "COMMENTS_SPIKE"
	FlagEngagementRatio FlagType = "ENGAGEMENT_RATIO"
	FlagVelocityAnomaly FlagType = "VELOCITY_ANOMALY"
	FlagTimePattern     FlagType = "TIME_PATTERN"
	FlagRatioAnomaly    FlagType = "RATIO_ANOMALY"
	FlagZeroVariance    FlagType = "ZERO_VARIANCE"
	FlagSuddenStop      FlagType = "SUDDEN_STOP"
)

// Severity is the confidence tier of a BotFlag.
type Severity string

// Severity levels.
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// BotFlag is a single anomaly finding emitted by one detection rule.
type BotFlag struct {
	Type        FlagType `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Confidence  int      `json:"confidence"`
}

// BotDetectionResult is the aggregate output of a single detector run.
type BotDetectionResult struct {
	HasAnomalies    bool      `json:"hasAnomalies"`
	Flags           []BotFlag `json:"flags"`
	ConfidenceScore int       `json:"confidenceScore"`
}

// WeeklyClipRanking is one upserted row of the weekly per-clip leaderboard.
type WeeklyClipRanking struct {
	WeekStart    time.Time `db:"week_start" json:"weekStart"`
	WeekEnd      time.Time `db:"week_end" json:"weekEnd"`
	SubmissionID string    `db:"submission_id" json:"submissionId"`
	Platform     string    `db:"platform" json:"platform"`
	Views        int64     `db:"views" json:"views"`
	Likes        int64     `db:"likes" json:"likes"`
	Engagement   float64   `db:"engagement" json:"engagement"`
	Rank         int       `db:"rank" json:"rank"`
}

// WeeklyCampaignRanking is one upserted row of the weekly per-campaign
// leaderboard.
type WeeklyCampaignRanking struct {
	WeekStart     time.Time `db:"week_start" json:"weekStart"`
	WeekEnd       time.Time `db:"week_end" json:"weekEnd"`
	CampaignID    string    `db:"campaign_id" json:"campaignId"`
	TotalViews    int64     `db:"total_views" json:"totalViews"`
	TotalLikes    int64     `db:"total_likes" json:"totalLikes"`
	AvgEngagement float64   `db:"avg_engagement" json:"avgEngagement"`
	ClipsCount    int       `db:"clips_count" json:"clipsCount"`
	Rank          int       `db:"rank" json:"rank"`
}

// CampaignCacheRow is the locally-mirrored campaign metadata row.
type CampaignCacheRow struct {
	CampaignID string    `db:"id" json:"campaignId"`
	Title      string    `db:"title" json:"title"`
	Status     string    `db:"status" json:"status"`
	SyncedAt   time.Time `db:"synced_at" json:"syncedAt"`
}

// StaleAfter is the age past which a CampaignCacheRow must be refreshed.
const StaleAfter = 5 * time.Minute

// IsStale reports whether this cache row is older than StaleAfter.
func (c CampaignCacheRow) IsStale(now time.Time) bool {
	return now.Sub(c.SyncedAt) > StaleAfter
}

// ClipRef identifies a clip to be refreshed: its submission id and the
// platform/videoId pair an adapter needs to fetch fresh counters.
type ClipRef struct {
	SubmissionID string   `json:"submissionId"`
	Platform     Platform `json:"platform"`
	VideoID      string   `json:"videoId"`
}
