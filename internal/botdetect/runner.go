package botdetect

import (
	"context"
	"strings"

	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

// Runner is the async wrapper around Detector: it pulls a clip's platform,
// campaign, user, and history from clip-service, runs detection, and
// publishes stats.bot_detected when the result is significant.
type Runner struct {
	detector   *Detector
	clipClient *peers.ClipServiceClient
	publisher  events.Publisher
	m          *metrics.Metrics
	log        logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(detector *Detector, clipClient *peers.ClipServiceClient, publisher events.Publisher, m *metrics.Metrics, log logger.Logger) *Runner {
	return &Runner{detector: detector, clipClient: clipClient, publisher: publisher, m: m, log: log}
}

// Run fetches submissionId's clip metadata and history, runs detection,
// and publishes stats.bot_detected iff at least one flag is HIGH or
// MEDIUM severity. A clip-service fetch failure yields a null result (no
// anomalies) rather than propagating, since bot detection is always
// best-effort and triggered out-of-band from the write path.
func (r *Runner) Run(ctx context.Context, submissionID string) domain.BotDetectionResult {
	clip, err := r.clipClient.GetClip(ctx, submissionID)
	if err != nil {
		r.log.Warn("bot detection: clip lookup failed",
			logger.String("submission_id", submissionID), logger.Error(err))
		return domain.BotDetectionResult{}
	}

	history, err := r.clipClient.History(ctx, submissionID)
	if err != nil {
		r.log.Warn("bot detection: history lookup failed",
			logger.String("submission_id", submissionID), logger.Error(err))
		return domain.BotDetectionResult{}
	}

	result := r.detector.Detect(clip.Platform, history)
	if !result.HasAnomalies {
		return result
	}

	significant := significantFlags(result.Flags)
	if len(significant) == 0 {
		return result
	}

	for _, f := range significant {
		r.m.BotFlagsEmitted.WithLabelValues(string(f.Type)).Inc()
	}

	r.publisher.PublishAsync(events.RoutingStatsBotDetected, events.BotDetectedPayload{
		ClipID:     submissionID,
		CampaignID: clip.CampaignID,
		UserID:     clip.UserID,
		FlagType:   string(significant[0].Type),
		Confidence: float64(result.ConfidenceScore) / 100,
		Evidence:   evidenceString(significant),
	})

	return result
}

func significantFlags(flags []domain.BotFlag) []domain.BotFlag {
	var out []domain.BotFlag
	for _, f := range flags {
		if f.Severity == domain.SeverityHigh || f.Severity == domain.SeverityMedium {
			out = append(out, f)
		}
	}
	return out
}

func evidenceString(flags []domain.BotFlag) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		parts = append(parts, string(f.Type)+": "+f.Description)
	}
	return strings.Join(parts, "; ")
}
