package events

import "context"

// Handler dispatches each inbound event variant to its own method, the
// tagged-sum-type counterpart of the platform's single generic "handle
// event" callback.
type Handler interface {
	HandleClipSubmitted(ctx context.Context, p ClipSubmittedPayload) error
	HandleClipApproved(ctx context.Context, p ClipApprovedPayload) error
	HandleStatsRequested(ctx context.Context, p StatsRequestedPayload) error
	HandleCampaignCreated(ctx context.Context, p CampaignCreatedPayload) error
	HandleCampaignStatusChanged(ctx context.Context, p CampaignStatusChangedPayload) error
}

// Dispatch decodes env's payload against its routing key and invokes the
// matching Handler method. Unrecognized routing keys are not an error: the
// consumer group is bound to a shared exchange and other services' events
// may pass through the same stream.
func Dispatch(ctx context.Context, h Handler, env Envelope) error {
	switch env.RoutingKey {
	case RoutingClipSubmitted:
		var p ClipSubmittedPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		return h.HandleClipSubmitted(ctx, p)
	case RoutingClipApproved:
		var p ClipApprovedPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		return h.HandleClipApproved(ctx, p)
	case RoutingStatsRequested:
		var p StatsRequestedPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		return h.HandleStatsRequested(ctx, p)
	case RoutingCampaignCreated:
		var p CampaignCreatedPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		return h.HandleCampaignCreated(ctx, p)
	case RoutingCampaignStatusChanged:
		var p CampaignStatusChangedPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		return h.HandleCampaignStatusChanged(ctx, p)
	default:
		return nil
	}
}
