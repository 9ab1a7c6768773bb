package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/clipdeck/statistics-service/internal/apierr"
	"github.com/clipdeck/statistics-service/internal/domain"
)

const youtubeVideosURL = "https://www.googleapis.com/youtube/v3/videos"

// YouTube fetches view/like/comment counters from the YouTube Data API v3.
// YouTube never exposes a share count, so Shares is always 0.
type YouTube struct {
	client *http.Client
	apiKey string
}

// NewYouTube creates a YouTube adapter. apiKey may be empty; Fetch then
// returns a CONFIG error on first use rather than at construction time.
func NewYouTube(client *http.Client, apiKey string) *YouTube {
	return &YouTube{client: client, apiKey: apiKey}
}

type youtubeResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Fetch retrieves statistics for a single YouTube video id.
func (a *YouTube) Fetch(ctx context.Context, videoID string) (domain.PlatformStats, error) {
	if a.apiKey == "" {
		return domain.PlatformStats{}, apierr.New(apierr.Config, "YOUTUBE_API_KEY is not configured")
	}

	q := url.Values{}
	q.Set("part", "statistics,snippet")
	q.Set("id", videoID)
	q.Set("key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeVideosURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "build youtube request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "youtube request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "read youtube response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.PlatformStats{}, apierr.New(apierr.UpstreamHTTP,
			fmt.Sprintf("youtube returned status %d", resp.StatusCode))
	}

	var parsed youtubeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.Parse, "decode youtube response", err)
	}

	if len(parsed.Items) == 0 {
		return domain.PlatformStats{}, apierr.New(apierr.NotFound, "youtube video not found: "+videoID)
	}

	item := parsed.Items[0]
	return domain.PlatformStats{
		Views:        parseIntOrZero(item.Statistics.ViewCount),
		Likes:        parseIntOrZero(item.Statistics.LikeCount),
		Comments:     parseIntOrZero(item.Statistics.CommentCount),
		Shares:       0,
		ThumbnailURL: item.Snippet.Thumbnails.High.URL,
		Title:        item.Snippet.Title,
		Author:       item.Snippet.ChannelTitle,
	}, nil
}

// parseIntOrZero parses a decimal counter string, treating absent/malformed
// values as 0 rather than failing the whole fetch.
func parseIntOrZero(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
