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
)

// RankableCampaign is one row of campaign-service's
// campaign-stats-for-rankings response.
type RankableCampaign struct {
	CampaignID string `json:"campaignId"`
	TotalViews int64  `json:"totalViews"`
	TotalLikes int64  `json:"totalLikes"`
	ClipsCount int    `json:"clipsCount"`
}

// AvgEngagement computes (totalLikes/totalViews), 0 when totalViews=0. It is
// the campaign ranking's secondary sort key and is always computed here: an
// avgEngagement field in the campaign-service response is not decoded.
func (r RankableCampaign) AvgEngagement() float64 {
	if r.TotalViews <= 0 {
		return 0
	}
	return float64(r.TotalLikes) / float64(r.TotalViews)
}

// CampaignServiceClient talks to campaign-service for ranking input and
// campaign metadata lookups used to warm CampaignCache on a miss.
type CampaignServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCampaignServiceClient creates a CampaignServiceClient.
func NewCampaignServiceClient(baseURL string, httpClient *http.Client) *CampaignServiceClient {
	return &CampaignServiceClient{baseURL: baseURL, httpClient: httpClient}
}

// CampaignMetadata is the subset of campaign-service's campaign resource
// CampaignCache mirrors locally.
type CampaignMetadata struct {
	CampaignID string `json:"campaignId"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

// GetCampaign fetches one campaign's metadata, used to warm CampaignCache
// on a cache miss.
func (c *CampaignServiceClient) GetCampaign(ctx context.Context, campaignID string) (CampaignMetadata, error) {
	var meta CampaignMetadata
	path, err := url.JoinPath(c.baseURL, "campaigns", campaignID)
	if err != nil {
		return CampaignMetadata{}, fmt.Errorf("build campaign-service url: %w", err)
	}
	if err := c.doRequest(ctx, http.MethodGet, path, &meta); err != nil {
		return CampaignMetadata{}, err
	}
	return meta, nil
}

// StatsForRankings fetches campaign aggregates within [weekStart, weekEnd]
// for the weekly campaign ranking calculation.
func (c *CampaignServiceClient) StatsForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]RankableCampaign, error) {
	var campaigns []RankableCampaign
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse campaign-service base url: %w", err)
	}
	base.Path, err = url.JoinPath(base.Path, "campaign-stats-for-rankings")
	if err != nil {
		return nil, fmt.Errorf("build campaign-service url: %w", err)
	}
	q := base.Query()
	q.Set("weekStart", weekStart.Format(time.RFC3339))
	q.Set("weekEnd", weekEnd.Format(time.RFC3339))
	base.RawQuery = q.Encode()

	if err := c.doRequest(ctx, http.MethodGet, base.String(), &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (c *CampaignServiceClient) doRequest(ctx context.Context, method, target string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return apierr.Wrap(apierr.UpstreamHTTP, "build campaign-service request", err)
	}
	req.Header.Set("X-Internal-Service", internalServiceHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Wrap(apierr.UpstreamHTTP, "campaign-service request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Wrap(apierr.UpstreamHTTP, "read campaign-service response", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return apierr.New(apierr.NotFound, "campaign-service: not found")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apierr.New(apierr.UpstreamHTTP,
			fmt.Sprintf("campaign-service returned status %d", resp.StatusCode))
	}

	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return apierr.Wrap(apierr.Parse, "decode campaign-service response", err)
	}
	return nil
}
