package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

type fakeCacheRepo struct {
	row       domain.CampaignCacheRow
	found     bool
	getErr    error
	upserted  []domain.CampaignCacheRow
	upsertErr error
}

func (f *fakeCacheRepo) Get(ctx context.Context, campaignID string) (domain.CampaignCacheRow, bool, error) {
	return f.row, f.found, f.getErr
}

func (f *fakeCacheRepo) Upsert(ctx context.Context, row domain.CampaignCacheRow) error {
	f.upserted = append(f.upserted, row)
	return f.upsertErr
}

type fakeMetadataFetcher struct {
	meta peers.CampaignMetadata
	err  error
}

func (f fakeMetadataFetcher) GetCampaign(ctx context.Context, campaignID string) (peers.CampaignMetadata, error) {
	return f.meta, f.err
}

func testCacheLogger(t *testing.T) logger.Logger {
	t.Helper()
	return logger.Must(logger.Config{Level: "fatal"})
}

func TestGetOrPull_FreshRowIsReturnedWithoutPulling(t *testing.T) {
	repo := &fakeCacheRepo{
		row:   domain.CampaignCacheRow{CampaignID: "c1", Title: "Cached", Status: "ACTIVE", SyncedAt: time.Now()},
		found: true,
	}
	fetcher := fakeMetadataFetcher{err: errors.New("should not be called")}
	c := &Cache{repo: repo, campaignClient: fetcher, log: testCacheLogger(t)}

	row, err := c.GetOrPull(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "Cached", row.Title)
	require.Empty(t, repo.upserted)
}

func TestGetOrPull_StaleRowPullsFreshAndUpserts(t *testing.T) {
	repo := &fakeCacheRepo{
		row:   domain.CampaignCacheRow{CampaignID: "c1", Title: "Old", Status: "ACTIVE", SyncedAt: time.Now().Add(-time.Hour)},
		found: true,
	}
	fetcher := fakeMetadataFetcher{meta: peers.CampaignMetadata{CampaignID: "c1", Title: "Fresh", Status: "PAUSED"}}
	c := &Cache{repo: repo, campaignClient: fetcher, log: testCacheLogger(t)}

	row, err := c.GetOrPull(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "Fresh", row.Title)
	require.Equal(t, "PAUSED", row.Status)
	require.Len(t, repo.upserted, 1)
}

func TestGetOrPull_MissingRowPulls(t *testing.T) {
	repo := &fakeCacheRepo{found: false}
	fetcher := fakeMetadataFetcher{meta: peers.CampaignMetadata{CampaignID: "c2", Title: "New Campaign", Status: "ACTIVE"}}
	c := &Cache{repo: repo, campaignClient: fetcher, log: testCacheLogger(t)}

	row, err := c.GetOrPull(context.Background(), "c2")
	require.NoError(t, err)
	require.Equal(t, "New Campaign", row.Title)
	require.Len(t, repo.upserted, 1)
}

func TestGetOrPull_RepoGetErrorPropagates(t *testing.T) {
	repo := &fakeCacheRepo{getErr: errors.New("db down")}
	c := &Cache{repo: repo, campaignClient: fakeMetadataFetcher{}, log: testCacheLogger(t)}

	_, err := c.GetOrPull(context.Background(), "c1")
	require.Error(t, err)
}

func TestGetOrPull_CampaignClientErrorPropagates(t *testing.T) {
	repo := &fakeCacheRepo{found: false}
	fetcher := fakeMetadataFetcher{err: errors.New("campaign-service down")}
	c := &Cache{repo: repo, campaignClient: fetcher, log: testCacheLogger(t)}

	_, err := c.GetOrPull(context.Background(), "c1")
	require.Error(t, err)
}

func TestGetOrPull_UpsertFailureIsSwallowed(t *testing.T) {
	repo := &fakeCacheRepo{found: false, upsertErr: errors.New("write failed")}
	fetcher := fakeMetadataFetcher{meta: peers.CampaignMetadata{CampaignID: "c3", Title: "T", Status: "ACTIVE"}}
	c := &Cache{repo: repo, campaignClient: fetcher, log: testCacheLogger(t)}

	row, err := c.GetOrPull(context.Background(), "c3")
	require.NoError(t, err)
	require.Equal(t, "T", row.Title)
}

func TestHandleCampaignCreated_ForcesActiveStatus(t *testing.T) {
	repo := &fakeCacheRepo{}
	c := &Cache{repo: repo, campaignClient: fakeMetadataFetcher{}, log: testCacheLogger(t)}

	err := c.HandleCampaignCreated(context.Background(), "c1", "Launch Week")
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	require.Equal(t, "ACTIVE", repo.upserted[0].Status)
	require.Equal(t, "Launch Week", repo.upserted[0].Title)
}

func TestHandleCampaignStatusChanged_PreservesCachedTitle(t *testing.T) {
	repo := &fakeCacheRepo{
		row:   domain.CampaignCacheRow{CampaignID: "c1", Title: "Existing Title", Status: "ACTIVE", SyncedAt: time.Now()},
		found: true,
	}
	c := &Cache{repo: repo, campaignClient: fakeMetadataFetcher{}, log: testCacheLogger(t)}

	err := c.HandleCampaignStatusChanged(context.Background(), "c1", "PAUSED")
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	require.Equal(t, "Existing Title", repo.upserted[0].Title)
	require.Equal(t, "PAUSED", repo.upserted[0].Status)
}

func TestHandleCampaignStatusChanged_MissingRowLeavesTitleEmpty(t *testing.T) {
	repo := &fakeCacheRepo{found: false}
	c := &Cache{repo: repo, campaignClient: fakeMetadataFetcher{}, log: testCacheLogger(t)}

	err := c.HandleCampaignStatusChanged(context.Background(), "c2", "ACTIVE")
	require.NoError(t, err)
	require.Equal(t, "", repo.upserted[0].Title)
}
