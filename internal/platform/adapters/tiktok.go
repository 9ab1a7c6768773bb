package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/clipdeck/statistics-service/internal/apierr"
	"github.com/clipdeck/statistics-service/internal/domain"
)

const tikwmBaseURL = "https://www.tikwm.com/api/"

// TikTok fetches counters via the tikwm.com unofficial API.
type TikTok struct {
	client *http.Client
}

// NewTikTok creates a TikTok adapter.
func NewTikTok(client *http.Client) *TikTok {
	return &TikTok{client: client}
}

type tikwmResponse struct {
	Data *struct {
		PlayCount    int64 `json:"play_count"`
		DiggCount    int64 `json:"digg_count"`
		CommentCount int64 `json:"comment_count"`
		ShareCount   int64 `json:"share_count"`
	} `json:"data"`
}

// Fetch retrieves statistics for a TikTok video. videoID may already be a
// full TikTok URL; if it isn't, a synthetic video URL is built from it.
// When the upstream response carries no `.data` field, that's a soft
// not-found and an all-zero result is returned rather than an error.
func (a *TikTok) Fetch(ctx context.Context, videoID string) (domain.PlatformStats, error) {
	targetURL := videoID
	if !strings.Contains(targetURL, "tiktok.com") {
		targetURL = fmt.Sprintf("https://www.tiktok.com/@tiktok/video/%s", videoID)
	}

	q := url.Values{}
	q.Set("url", targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tikwmBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "build tiktok request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "tiktok request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "read tiktok response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.PlatformStats{}, apierr.New(apierr.UpstreamHTTP,
			fmt.Sprintf("tiktok returned status %d", resp.StatusCode))
	}

	var parsed tikwmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.Parse, "decode tiktok response", err)
	}

	if parsed.Data == nil {
		// Soft failure: tikwm had nothing for this URL.
		return domain.PlatformStats{}, nil
	}

	return domain.PlatformStats{
		Views:    parsed.Data.PlayCount,
		Likes:    parsed.Data.DiggCount,
		Comments: parsed.Data.CommentCount,
		Shares:   parsed.Data.ShareCount,
	}, nil
}
