// Package scheduler wires the two fixed cron entries: an hourly batch
// stats refresh and a midnight weekly rankings calculation.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
	"github.com/clipdeck/statistics-service/internal/rankings"
	"github.com/clipdeck/statistics-service/internal/stats"
)

const (
	hourlyRefreshSpec    = "0 * * * *"
	midnightRankingsSpec = "0 0 * * *"
	tickTimeout          = 10 * time.Minute
)

// Scheduler owns the cron instance and the two registered jobs.
type Scheduler struct {
	cron       *cron.Cron
	clipClient *peers.ClipServiceClient
	collector  *stats.Collector
	rankings   *rankings.Engine
	log        logger.Logger
}

// New builds a Scheduler with both entries registered but not yet started.
func New(clipClient *peers.ClipServiceClient, collector *stats.Collector, rankingsEngine *rankings.Engine, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	s := &Scheduler{cron: c, clipClient: clipClient, collector: collector, rankings: rankingsEngine, log: log}

	if _, err := c.AddFunc(hourlyRefreshSpec, s.runHourlyRefresh); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(midnightRankingsSpec, s.runMidnightRankings); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins the cron scheduler. Entries fire on their own goroutines
// managed by the cron library.
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler",
		logger.String("hourly_refresh", hourlyRefreshSpec),
		logger.String("midnight_rankings", midnightRankingsSpec))
	s.cron.Start()
}

// Stop halts the cron scheduler. In-flight tick work is abandoned past the
// cron library's own stop context, per the documented shutdown ordering:
// the scheduler is stopped by process termination, not drained.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runHourlyRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	clips, err := s.clipClient.NeedsRefresh(ctx)
	if err != nil {
		s.log.Error("hourly refresh: fetch worklist failed", logger.Error(err))
		return
	}
	if len(clips) > stats.MaxBatchSize {
		clips = clips[:stats.MaxBatchSize]
	}

	result := s.collector.BatchRefresh(ctx, clips)
	s.log.Info("hourly refresh complete",
		logger.Int("clip_count", len(clips)),
		logger.Int("success", result.SuccessCount),
		logger.Int("fail", result.FailCount))
}

func (s *Scheduler) runMidnightRankings() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	now := time.Now()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := s.rankings.CalculateClipRankings(ctx, now); err != nil {
			s.log.Error("midnight clip rankings failed", logger.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.rankings.CalculateCampaignRankings(ctx, now); err != nil {
			s.log.Error("midnight campaign rankings failed", logger.Error(err))
		}
	}()

	wg.Wait()
}
