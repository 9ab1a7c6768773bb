package peers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/internal/apierr"
)

func TestClipServiceClient_GetClip_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, internalServiceHeader, r.Header.Get("X-Internal-Service"))
		require.Equal(t, "/clips/s1", r.URL.Path)
		w.Write([]byte(`{"submissionId":"s1","platform":"TIKTOK","platformVideoId":"v1"}`))
	}))
	defer srv.Close()

	c := NewClipServiceClient(srv.URL, srv.Client())
	clip, err := c.GetClip(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "s1", clip.SubmissionID)
	require.Equal(t, "v1", clip.PlatformVideoID)
}

func TestClipServiceClient_GetClip_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClipServiceClient(srv.URL, srv.Client())
	_, err := c.GetClip(context.Background(), "missing")
	require.Error(t, err)
	kind, ok := apierr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apierr.NotFound, kind)
}

func TestClipServiceClient_GetClip_UpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClipServiceClient(srv.URL, srv.Client())
	_, err := c.GetClip(context.Background(), "s1")
	require.Error(t, err)
	kind, ok := apierr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apierr.UpstreamHTTP, kind)
}

func TestClipServiceClient_GetClip_MalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClipServiceClient(srv.URL, srv.Client())
	_, err := c.GetClip(context.Background(), "s1")
	require.Error(t, err)
	kind, ok := apierr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apierr.Parse, kind)
}

func TestClipServiceClient_ApprovedForRankings_PassesWeekBoundsAsQuery(t *testing.T) {
	weekStart := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 6)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, weekStart.Format(time.RFC3339), r.URL.Query().Get("weekStart"))
		require.Equal(t, weekEnd.Format(time.RFC3339), r.URL.Query().Get("weekEnd"))
		w.Write([]byte(`[{"submissionId":"clip-1","platform":"TIKTOK","views":1000,"likes":50,"comments":5}]`))
	}))
	defer srv.Close()

	c := NewClipServiceClient(srv.URL, srv.Client())
	clips, err := c.ApprovedForRankings(context.Background(), weekStart, weekEnd)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	require.InDelta(t, 0.055, clips[0].Engagement(), 0.0001)
}

func TestClipServiceClient_History_ReturnsNewestFirstEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clips/s1/history", r.URL.Path)
		w.Write([]byte(`[{"views":1000,"likes":10,"comments":1,"recordedAt":"2026-08-01T00:00:00Z"}]`))
	}))
	defer srv.Close()

	c := NewClipServiceClient(srv.URL, srv.Client())
	history, err := c.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, int64(1000), history[0].Views)
}

func TestCampaignServiceClient_GetCampaign_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/campaigns/c1", r.URL.Path)
		w.Write([]byte(`{"campaignId":"c1","title":"Launch","status":"ACTIVE"}`))
	}))
	defer srv.Close()

	c := NewCampaignServiceClient(srv.URL, srv.Client())
	meta, err := c.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "Launch", meta.Title)
}

func TestCampaignServiceClient_GetCampaign_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCampaignServiceClient(srv.URL, srv.Client())
	_, err := c.GetCampaign(context.Background(), "missing")
	require.Error(t, err)
	kind, ok := apierr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apierr.NotFound, kind)
}

func TestCampaignServiceClient_StatsForRankings_ComputesAvgEngagement(t *testing.T) {
	weekStart := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 6)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"campaignId":"c1","totalViews":10000,"totalLikes":500,"clipsCount":4}]`))
	}))
	defer srv.Close()

	c := NewCampaignServiceClient(srv.URL, srv.Client())
	campaigns, err := c.StatsForRankings(context.Background(), weekStart, weekEnd)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.InDelta(t, 0.05, campaigns[0].AvgEngagement(), 0.0001)
}

func TestCampaignServiceClient_StatsForRankings_ZeroViewsAvgEngagementIsZero(t *testing.T) {
	r := RankableCampaign{CampaignID: "c2", TotalViews: 0, TotalLikes: 10}
	require.Equal(t, 0.0, r.AvgEngagement())
}
