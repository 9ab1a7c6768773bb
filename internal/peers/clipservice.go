// Package peers provides typed HTTP clients for the two internal services
// the statistics service pulls clip and campaign metadata from.
package peers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/clipdeck/statistics-service/internal/apierr"
	"github.com/clipdeck/statistics-service/internal/domain"
)

const internalServiceHeader = "clipdeck-statistics-service"

// Clip is the subset of clip-service's clip resource this service needs.
type Clip struct {
	SubmissionID    string          `json:"submissionId"`
	Platform        domain.Platform `json:"platform"`
	PlatformVideoID string          `json:"platformVideoId"`
	CampaignID      string          `json:"campaignId"`
	UserID          string          `json:"userId"`
}

// ClipServiceClient talks to clip-service for clip lookups, the refresh
// worklist, and engagement history used by the bot detector.
type ClipServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClipServiceClient creates a ClipServiceClient.
func NewClipServiceClient(baseURL string, httpClient *http.Client) *ClipServiceClient {
	return &ClipServiceClient{baseURL: baseURL, httpClient: httpClient}
}

// GetClip fetches one clip by submission id.
func (c *ClipServiceClient) GetClip(ctx context.Context, submissionID string) (Clip, error) {
	var clip Clip
	path, err := url.JoinPath(c.baseURL, "clips", submissionID)
	if err != nil {
		return Clip{}, fmt.Errorf("build clip-service url: %w", err)
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &clip); err != nil {
		return Clip{}, err
	}
	return clip, nil
}

// NeedsRefresh fetches the hourly refresh worklist.
func (c *ClipServiceClient) NeedsRefresh(ctx context.Context) ([]domain.ClipRef, error) {
	var clips []domain.ClipRef
	path, err := url.JoinPath(c.baseURL, "clips", "needs-refresh")
	if err != nil {
		return nil, fmt.Errorf("build clip-service url: %w", err)
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// ApprovedForRankings fetches clips approved within [weekStart, weekEnd] for
// the weekly clip ranking calculation.
func (c *ClipServiceClient) ApprovedForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]RankableClip, error) {
	var clips []RankableClip
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse clip-service base url: %w", err)
	}
	base.Path, err = url.JoinPath(base.Path, "clips", "approved-for-rankings")
	if err != nil {
		return nil, fmt.Errorf("build clip-service url: %w", err)
	}
	q := base.Query()
	q.Set("weekStart", weekStart.Format(time.RFC3339))
	q.Set("weekEnd", weekEnd.Format(time.RFC3339))
	base.RawQuery = q.Encode()

	if err := c.doRequest(ctx, http.MethodGet, base.String(), nil, &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// History fetches a clip's newest-first engagement history for bot
// detection.
func (c *ClipServiceClient) History(ctx context.Context, submissionID string) ([]domain.StatsHistoryEntry, error) {
	var history []domain.StatsHistoryEntry
	path, err := url.JoinPath(c.baseURL, "clips", submissionID, "history")
	if err != nil {
		return nil, fmt.Errorf("build clip-service url: %w", err)
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// RankableClip is one row of clip-service's approved-for-rankings response.
type RankableClip struct {
	SubmissionID string          `json:"submissionId"`
	Platform     domain.Platform `json:"platform"`
	Views        int64           `json:"views"`
	Likes        int64           `json:"likes"`
	Comments     int64           `json:"comments"`
}

// Engagement computes (likes+comments)/views for this row, 0 when views=0.
func (r RankableClip) Engagement() float64 {
	if r.Views <= 0 {
		return 0
	}
	return float64(r.Likes+r.Comments) / float64(r.Views)
}

func (c *ClipServiceClient) doRequest(ctx context.Context, method, target string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apierr.Wrap(apierr.UpstreamHTTP, "build clip-service request", err)
	}
	req.Header.Set("X-Internal-Service", internalServiceHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Wrap(apierr.UpstreamHTTP, "clip-service request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Wrap(apierr.UpstreamHTTP, "read clip-service response", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return apierr.New(apierr.NotFound, "clip-service: not found")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apierr.New(apierr.UpstreamHTTP,
			fmt.Sprintf("clip-service returned status %d", resp.StatusCode))
	}

	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return apierr.Wrap(apierr.Parse, "decode clip-service response", err)
	}
	return nil
}

