package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/clipdeck/statistics-service/internal/apierr"
	"github.com/clipdeck/statistics-service/internal/domain"
)

var tweetIDPattern = regexp.MustCompile(`(?:twitter\.com|x\.com|nitter\.[^/]+)/[^/]+/status/(\d+)`)

const twitterSyndicationURL = "https://cdn.syndication.twimg.com/tweet-result"

// Twitter fetches impression/favorite/retweet counters for a tweet via the
// public syndication endpoint.
type Twitter struct {
	client *http.Client
}

// NewTwitter creates a Twitter/X adapter.
func NewTwitter(client *http.Client) *Twitter {
	return &Twitter{client: client}
}

type twitterResponse struct {
	ImpressionCount   int64 `json:"impression_count"`
	FavoriteCount     int64 `json:"favorite_count"`
	ConversationCount int64 `json:"conversation_count"`
	RetweetCount      int64 `json:"retweet_count"`
	QuoteCount        int64 `json:"quote_count"`
}

// Fetch extracts a tweet id from the given URL-or-id input and retrieves its
// statistics. Returns all-zero stats with no error when the input does not look
// like a tweet URL, per the original regex-miss-returns-null behavior.
func (a *Twitter) Fetch(ctx context.Context, videoID string) (domain.PlatformStats, error) {
	matches := tweetIDPattern.FindStringSubmatch(videoID)
	if matches == nil {
		return domain.PlatformStats{}, nil
	}
	tweetID := matches[1]

	reqURL := fmt.Sprintf("%s?id=%s&token=x", twitterSyndicationURL, tweetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "build twitter request", err)
	}
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "twitter request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.UpstreamHTTP, "read twitter response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.PlatformStats{}, apierr.New(apierr.UpstreamHTTP,
			fmt.Sprintf("twitter returned status %d", resp.StatusCode))
	}

	var parsed twitterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.PlatformStats{}, apierr.Wrap(apierr.Parse, "decode twitter response", err)
	}

	return domain.PlatformStats{
		Views:    parsed.ImpressionCount,
		Likes:    parsed.FavoriteCount,
		Comments: parsed.ConversationCount,
		Shares:   parsed.RetweetCount + parsed.QuoteCount,
	}, nil
}
