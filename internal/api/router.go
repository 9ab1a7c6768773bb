// Package api serves the statistics service's read-side HTTP surface: the
// stats/rankings endpoints plus health and readiness probes, over gin.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

const (
	corsMaxAge          = 12 * time.Hour
	rateLimitWindow     = time.Minute
	rateLimitMaxReq     = 120
)

// NewRouter builds the gin engine with middleware and routes wired per the
// external interface list: GET /stats/:clipId, POST /stats/refresh/:clipId
// (auth), POST /stats/batch-refresh (staff), GET /rankings/weekly-clips,
// GET /rankings/weekly-campaigns, POST /rankings/calculate (staff),
// GET /health, GET /ready.
func NewRouter(h *Handlers, jwtSecret string, log logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}))
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())
	router.Use(rateLimiter(rateLimitMaxReq, rateLimitWindow))

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/stats/:clipId", h.GetStats)
	router.GET("/rankings/weekly-clips", h.WeeklyClipRankings)
	router.GET("/rankings/weekly-campaigns", h.WeeklyCampaignRankings)

	authed := router.Group("/", RequireAuth(jwtSecret))
	authed.POST("/stats/refresh/:clipId", h.RefreshStats)

	staff := router.Group("/", RequireAuth(jwtSecret), RequireStaff())
	staff.POST("/stats/batch-refresh", h.BatchRefreshStats)
	staff.POST("/rankings/calculate", h.CalculateRankings)

	return router
}
