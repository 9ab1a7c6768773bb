// Package adapters normalizes engagement counters from the four supported
// social video platforms into a common domain.PlatformStats tuple.
//
// Each adapter implements Adapter.Fetch. Per the platform-dispatch redesign,
// callers never switch on a platform string themselves: they look the
// adapter up in a Registry keyed by domain.Platform.
package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/clipdeck/statistics-service/internal/apierr"
	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/platform/httpclient"
)

// Adapter fetches and normalizes counters for one video on one platform.
type Adapter interface {
	// Fetch returns the normalized counters for videoId, or an error.
	//
	// Normalization policy: a soft "document not found"/compute-challenge
	// response from the upstream returns an all-zero PlatformStats (never
	// fatal to a caller iterating many clips); a transport-level failure
	// (non-2xx unrelated to a known soft case, timeout, malformed body
	// the adapter cannot otherwise interpret) returns an error. Two
	// adapters differ: Instagram returns all-zero for every failure,
	// transport errors included, and YouTube reports an empty item list as
	// a NOT_FOUND error rather than all-zero.
	Fetch(ctx context.Context, videoID string) (domain.PlatformStats, error)
}

// Registry maps a platform enum to its Adapter implementation, replacing a
// switch-on-string dispatch with a lookup table built once at startup.
type Registry struct {
	adapters map[domain.Platform]Adapter
}

// NewRegistry builds the adapter registry for all four supported platforms.
// youtubeAPIKey may be empty only if the YouTube adapter will never be used;
// the YouTube adapter's Fetch then returns a CONFIG error on every call.
func NewRegistry(client *http.Client, youtubeAPIKey string) *Registry {
	if client == nil {
		client = httpclient.New(httpclient.Config{})
	}
	return &Registry{
		adapters: map[domain.Platform]Adapter{
			domain.PlatformYouTube:   NewYouTube(client, youtubeAPIKey),
			domain.PlatformTikTok:    NewTikTok(client),
			domain.PlatformInstagram: NewInstagram(client),
			domain.PlatformTwitter:   NewTwitter(client),
		},
	}
}

// Get returns the adapter for platform, or an error for an unknown platform.
func (r *Registry) Get(platform domain.Platform) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, apierr.New(apierr.Validation, fmt.Sprintf("unknown platform: %s", platform))
	}
	return a, nil
}
