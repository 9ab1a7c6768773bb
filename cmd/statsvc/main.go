// Command statsvc is the statistics service's composition root: it wires
// every package into a running process (HTTP API, event consumer,
// scheduler) and owns startup/shutdown ordering.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipdeck/statistics-service/internal/api"
	"github.com/clipdeck/statistics-service/internal/bootstrap"
	"github.com/clipdeck/statistics-service/internal/botdetect"
	"github.com/clipdeck/statistics-service/internal/cache"
	"github.com/clipdeck/statistics-service/internal/campaign"
	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/database"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/adapters"
	"github.com/clipdeck/statistics-service/internal/platform/httpclient"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
	"github.com/clipdeck/statistics-service/internal/rankings"
	"github.com/clipdeck/statistics-service/internal/scheduler"
	"github.com/clipdeck/statistics-service/internal/stats"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Server.Environment != "production",
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting statistics service",
		logger.String("environment", cfg.Server.Environment),
		logger.Int("port", cfg.Server.Port))

	if err := database.RunMigrations(cfg.Database.URL, log); err != nil {
		log.Error("migrations failed", logger.Error(err))
		return 1
	}

	db, err := bootstrap.NewPostgres(cfg.Database)
	if err != nil {
		log.Error("database connection failed", logger.Error(err))
		return 1
	}
	defer db.Close()

	redisClient, err := bootstrap.NewRedis(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", logger.Error(err))
		return 1
	}
	defer redisClient.Close()

	reg := metrics.New(nil)

	httpClient := httpclient.New(httpclient.Config{})
	adapterRegistry := adapters.NewRegistry(httpClient, cfg.Platform.YouTubeAPIKey)
	statsCache := cache.NewRedisStore(redisClient, reg, log)

	publisher := events.NewStreamPublisher(redisClient, cfg.Events.Stream, "statistics-service", log)

	clipClient := peers.NewClipServiceClient(cfg.Peers.ClipServiceURL, httpClient)
	campaignClient := peers.NewCampaignServiceClient(cfg.Peers.CampaignServiceURL, httpClient)

	rankingsRepo := database.NewRankingsRepository(db)
	campaignCacheRepo := database.NewCampaignCacheRepository(db)

	collector := stats.New(adapterRegistry, statsCache, publisher, reg, log)
	campaignCache := campaign.New(campaignCacheRepo, campaignClient, log)
	rankingsEngine := rankings.New(clipClient, campaignClient, rankingsRepo, reg, log)

	detector := botdetect.New()
	botRunner := botdetect.NewRunner(detector, clipClient, publisher, reg, log)

	handlers := events.NewServiceHandlers(clipClient, collector, campaignCache, botRunner, log)
	consumer := events.NewConsumer(
		redisClient,
		cfg.Events.Stream,
		cfg.Events.ConsumerGroup,
		cfg.Events.DeadLetter,
		int(cfg.Events.MaxDeliveries),
		handlers,
		reg,
		log,
	)

	cronScheduler, err := scheduler.New(clipClient, collector, rankingsEngine, log)
	if err != nil {
		log.Error("scheduler setup failed", logger.Error(err))
		return 1
	}

	readyCheck := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	apiHandlers := api.NewHandlers(collector, clipClient, rankingsRepo, rankingsEngine, readyCheck, log)
	router := api.NewRouter(apiHandlers, cfg.Auth.JWTSecret, log)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if err := consumer.Start(ctx); err != nil {
		log.Error("event consumer failed to start", logger.Error(err))
		return 1
	}

	cronScheduler.Start()

	go func() {
		log.Info("http server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	consumer.Stop()
	cronScheduler.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", logger.Error(err))
	}

	log.Info("statistics service exited cleanly")
	return 0
}
