package events

import (
	"context"
	"fmt"

	"github.com/clipdeck/statistics-service/internal/domain"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

// StatsRefresher is the subset of StatsCollector the clip.approved handler
// needs; declared here so this package doesn't import internal/stats.
type StatsRefresher interface {
	RefreshClipStats(ctx context.Context, submissionID string, platform domain.Platform, videoID string) (domain.PlatformStats, error)
}

// CampaignUpserter is the subset of CampaignCache the campaign.* handlers
// need.
type CampaignUpserter interface {
	HandleCampaignCreated(ctx context.Context, campaignID, title string) error
	HandleCampaignStatusChanged(ctx context.Context, campaignID, newStatus string) error
}

// ClipLookup resolves a submission id to its clip-service record, used by
// the clip.approved handler to decide whether a refresh is possible.
type ClipLookup interface {
	GetClip(ctx context.Context, submissionID string) (peers.Clip, error)
}

// BotDetectionTrigger runs bot detection for one clip, on demand. Matches
// *botdetect.Runner's Run method; declared here so this package doesn't
// import internal/botdetect.
type BotDetectionTrigger interface {
	Run(ctx context.Context, submissionID string) domain.BotDetectionResult
}

// ServiceHandlers implements Handler, dispatching each routing key to the
// component that owns it.
type ServiceHandlers struct {
	clips     ClipLookup
	refresher StatsRefresher
	campaigns CampaignUpserter
	botRunner BotDetectionTrigger
	log       logger.Logger
}

// NewServiceHandlers creates the top-level Handler wiring every routing
// key's event to its owning component.
func NewServiceHandlers(clips ClipLookup, refresher StatsRefresher, campaigns CampaignUpserter, botRunner BotDetectionTrigger, log logger.Logger) *ServiceHandlers {
	return &ServiceHandlers{clips: clips, refresher: refresher, campaigns: campaigns, botRunner: botRunner, log: log}
}

// HandleClipSubmitted just logs and acknowledges; no refresh work happens
// until the clip is approved.
func (h *ServiceHandlers) HandleClipSubmitted(ctx context.Context, p ClipSubmittedPayload) error {
	h.log.Info("clip submitted", logger.String("submission_id", p.SubmissionID))
	return nil
}

// HandleClipApproved fetches the clip and, if it carries a platform video
// id, triggers an immediate refresh. Both the clip-service lookup and the
// refresh failure propagate so the consumer retries the message.
func (h *ServiceHandlers) HandleClipApproved(ctx context.Context, p ClipApprovedPayload) error {
	clip, err := h.clips.GetClip(ctx, p.SubmissionID)
	if err != nil {
		return fmt.Errorf("fetch approved clip: %w", err)
	}

	if clip.PlatformVideoID == "" {
		h.log.Info("clip approved without platform video id, skipping refresh",
			logger.String("submission_id", p.SubmissionID))
		return nil
	}

	if _, err := h.refresher.RefreshClipStats(ctx, p.SubmissionID, clip.Platform, clip.PlatformVideoID); err != nil {
		return fmt.Errorf("refresh clip on approval: %w", err)
	}
	return nil
}

// HandleStatsRequested runs bot detection for the clip on demand. The
// runner swallows its own fetch/publish failures and returns a null
// result rather than erroring, so this is always best-effort and never
// triggers a redelivery.
func (h *ServiceHandlers) HandleStatsRequested(ctx context.Context, p StatsRequestedPayload) error {
	h.log.Info("stats requested", logger.String("submission_id", p.SubmissionID))
	h.botRunner.Run(ctx, p.SubmissionID)
	return nil
}

// HandleCampaignCreated upserts CampaignCache with the event's title and a
// forced ACTIVE status.
func (h *ServiceHandlers) HandleCampaignCreated(ctx context.Context, p CampaignCreatedPayload) error {
	return h.campaigns.HandleCampaignCreated(ctx, p.CampaignID, p.Title)
}

// HandleCampaignStatusChanged upserts CampaignCache's status column.
func (h *ServiceHandlers) HandleCampaignStatusChanged(ctx context.Context, p CampaignStatusChangedPayload) error {
	return h.campaigns.HandleCampaignStatusChanged(ctx, p.CampaignID, p.NewStatus)
}
