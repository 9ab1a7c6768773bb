package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipdeck/statistics-service/internal/apierr"
	"github.com/clipdeck/statistics-service/internal/database"
	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
	"github.com/clipdeck/statistics-service/internal/rankings"
	"github.com/clipdeck/statistics-service/internal/stats"
)

const (
	defaultRankingsLimit = 50
	maxRankingsLimit     = 200
)

// Handlers holds every dependency the read-side HTTP surface needs.
type Handlers struct {
	collector  *stats.Collector
	clipClient *peers.ClipServiceClient
	rankingsDB *database.RankingsRepository
	rankings   *rankings.Engine
	log        logger.Logger

	readyCheck func() error
}

// NewHandlers creates the Handlers set.
func NewHandlers(collector *stats.Collector, clipClient *peers.ClipServiceClient, rankingsDB *database.RankingsRepository, rankingsEngine *rankings.Engine, readyCheck func() error, log logger.Logger) *Handlers {
	return &Handlers{
		collector:  collector,
		clipClient: clipClient,
		rankingsDB: rankingsDB,
		rankings:   rankingsEngine,
		readyCheck: readyCheck,
		log:        log,
	}
}

// GetStats handles GET /stats/:clipId.
func (h *Handlers) GetStats(c *gin.Context) {
	clipID := c.Param("clipId")

	clip, err := h.clipClient.GetClip(c.Request.Context(), clipID)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.collector.GetOrFetchStats(c.Request.Context(), clipID, clip.Platform, clip.PlatformVideoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshStats handles POST /stats/refresh/:clipId (auth required).
func (h *Handlers) RefreshStats(c *gin.Context) {
	clipID := c.Param("clipId")

	clip, err := h.clipClient.GetClip(c.Request.Context(), clipID)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.collector.RefreshClipStats(c.Request.Context(), clipID, clip.Platform, clip.PlatformVideoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type batchRefreshRequest struct {
	Clips []domain.ClipRef `json:"clips"`
}

// BatchRefreshStats handles POST /stats/batch-refresh (staff, max 500 clips).
func (h *Handlers) BatchRefreshStats(c *gin.Context) {
	var req batchRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Wrap(apierr.Validation, "invalid request body", err))
		return
	}
	if len(req.Clips) > stats.MaxBatchSize {
		respondError(c, apierr.New(apierr.Validation, "batch exceeds maximum of 500 clips"))
		return
	}

	result := h.collector.BatchRefresh(c.Request.Context(), req.Clips)
	c.JSON(http.StatusOK, gin.H{
		"successCount": result.SuccessCount,
		"failCount":    result.FailCount,
	})
}

// WeeklyClipRankings handles GET /rankings/weekly-clips.
func (h *Handlers) WeeklyClipRankings(c *gin.Context) {
	weekStart := c.Query("weekStart")
	if weekStart == "" {
		start, _ := rankings.WeekBounds(time.Now())
		weekStart = start.Format("2006-01-02")
	}

	limit := defaultRankingsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRankingsLimit {
			respondError(c, apierr.New(apierr.Validation, "limit must be between 1 and 200"))
			return
		}
		limit = parsed
	}

	platform := c.Query("platform")

	rows, err := h.rankingsDB.WeeklyClipRankings(c.Request.Context(), weekStart, platform, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// WeeklyCampaignRankings handles GET /rankings/weekly-campaigns.
func (h *Handlers) WeeklyCampaignRankings(c *gin.Context) {
	weekStart := c.Query("weekStart")
	if weekStart == "" {
		start, _ := rankings.WeekBounds(time.Now())
		weekStart = start.Format("2006-01-02")
	}

	rows, err := h.rankingsDB.WeeklyCampaignRankings(c.Request.Context(), weekStart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CalculateRankings handles POST /rankings/calculate (staff). Both
// calculations run concurrently; either failure is reported but does not
// block the other from completing.
func (h *Handlers) CalculateRankings(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	var clipErr, campaignErr error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		clipErr = h.rankings.CalculateClipRankings(ctx, now)
	}()
	go func() {
		defer wg.Done()
		campaignErr = h.rankings.CalculateCampaignRankings(ctx, now)
	}()
	wg.Wait()

	if clipErr != nil || campaignErr != nil {
		h.log.Error("ranking calculation failed", logger.Error(clipErr), logger.Error(campaignErr))
		c.JSON(http.StatusInternalServerError, gin.H{
			"clipRankingsError":     errString(clipErr),
			"campaignRankingsError": errString(campaignErr),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health handles GET /health: liveness only, no dependency checks.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready: verifies dependencies (database, cache) are
// reachable.
func (h *Handlers) Ready(c *gin.Context) {
	if h.readyCheck != nil {
		if err := h.readyCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
