// Package events implements the statistics service's event bus: a publisher
// and consumer over Redis Streams playing the role of the platform's topic
// exchange (clipdeck.events) and its queue/routing-key vocabulary.
package events

import "time"

// RoutingKey identifies the kind of event carried by a message, standing in
// for an AMQP routing key.
type RoutingKey string

// Routing keys the statistics service's consumer is bound to, plus the two
// it publishes.
const (
	RoutingClipSubmitted        RoutingKey = "clip.submitted"
	RoutingClipApproved         RoutingKey = "clip.approved"
	RoutingStatsRequested       RoutingKey = "stats.requested"
	RoutingCampaignCreated      RoutingKey = "campaign.created"
	RoutingCampaignStatusChanged RoutingKey = "campaign.status_changed"

	RoutingStatsUpdated     RoutingKey = "stats.updated"
	RoutingStatsBotDetected RoutingKey = "stats.bot_detected"
)

// Envelope wraps every published message with the routing key plus the
// service/timestamp metadata the spec requires on published events.
type Envelope struct {
	RoutingKey RoutingKey `json:"routingKey"`
	Service    string     `json:"service"`
	Timestamp  time.Time  `json:"timestamp"`
	Payload    []byte     `json:"payload"`
}

// StatsUpdatedPayload is the body of a stats.updated event.
type StatsUpdatedPayload struct {
	ClipID     string  `json:"clipId"`
	Views      int64   `json:"views"`
	Likes      int64   `json:"likes"`
	Comments   int64   `json:"comments"`
	Shares     int64   `json:"shares"`
	Engagement float64 `json:"engagement"`
}

// BotDetectedPayload is the body of a stats.bot_detected event.
type BotDetectedPayload struct {
	ClipID     string  `json:"clipId"`
	CampaignID string  `json:"campaignId"`
	UserID     string  `json:"userId"`
	FlagType   string  `json:"flagType"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// ClipApprovedPayload is the body of a clip.approved event. It carries only
// the submission id: the handler fetches platform/videoId from
// clip-service so it always acts on the clip's current state.
type ClipApprovedPayload struct {
	SubmissionID string `json:"submissionId"`
}

// ClipSubmittedPayload is the body of a clip.submitted event.
type ClipSubmittedPayload struct {
	SubmissionID string `json:"submissionId"`
}

// CampaignCreatedPayload is the body of a campaign.created event.
type CampaignCreatedPayload struct {
	CampaignID string `json:"campaignId"`
	Title      string `json:"title"`
}

// CampaignStatusChangedPayload is the body of a campaign.status_changed event.
type CampaignStatusChangedPayload struct {
	CampaignID string `json:"campaignId"`
	NewStatus  string `json:"newStatus"`
}

// StatsRequestedPayload is the body of a stats.requested event.
type StatsRequestedPayload struct {
	SubmissionID string `json:"submissionId"`
}
