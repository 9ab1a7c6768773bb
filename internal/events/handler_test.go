package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("handler boom")

type recordingHandler struct {
	calls []string
	err   error
}

func (h *recordingHandler) HandleClipSubmitted(ctx context.Context, p ClipSubmittedPayload) error {
	h.calls = append(h.calls, "clip_submitted:"+p.SubmissionID)
	return h.err
}

func (h *recordingHandler) HandleClipApproved(ctx context.Context, p ClipApprovedPayload) error {
	h.calls = append(h.calls, "clip_approved:"+p.SubmissionID)
	return h.err
}

func (h *recordingHandler) HandleStatsRequested(ctx context.Context, p StatsRequestedPayload) error {
	h.calls = append(h.calls, "stats_requested:"+p.SubmissionID)
	return h.err
}

func (h *recordingHandler) HandleCampaignCreated(ctx context.Context, p CampaignCreatedPayload) error {
	h.calls = append(h.calls, "campaign_created:"+p.CampaignID)
	return h.err
}

func (h *recordingHandler) HandleCampaignStatusChanged(ctx context.Context, p CampaignStatusChangedPayload) error {
	h.calls = append(h.calls, "campaign_status_changed:"+p.CampaignID)
	return h.err
}

func envelopeFor(t *testing.T, key RoutingKey, payload any) Envelope {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{RoutingKey: key, Payload: body}
}

func TestDispatch_RoutesEachKeyToItsHandler(t *testing.T) {
	cases := []struct {
		key     RoutingKey
		payload any
		want    string
	}{
		{RoutingClipSubmitted, ClipSubmittedPayload{SubmissionID: "s1"}, "clip_submitted:s1"},
		{RoutingClipApproved, ClipApprovedPayload{SubmissionID: "s2"}, "clip_approved:s2"},
		{RoutingStatsRequested, StatsRequestedPayload{SubmissionID: "s3"}, "stats_requested:s3"},
		{RoutingCampaignCreated, CampaignCreatedPayload{CampaignID: "c1"}, "campaign_created:c1"},
		{RoutingCampaignStatusChanged, CampaignStatusChangedPayload{CampaignID: "c2"}, "campaign_status_changed:c2"},
	}

	for _, tc := range cases {
		h := &recordingHandler{}
		err := Dispatch(context.Background(), h, envelopeFor(t, tc.key, tc.payload))
		require.NoError(t, err)
		require.Equal(t, []string{tc.want}, h.calls)
	}
}

func TestDispatch_UnknownRoutingKeyIsNotAnError(t *testing.T) {
	h := &recordingHandler{}
	err := Dispatch(context.Background(), h, Envelope{RoutingKey: "submission.created", Payload: []byte(`{}`)})
	require.NoError(t, err)
	require.Empty(t, h.calls)
}

func TestDispatch_MalformedPayloadPropagatesDecodeError(t *testing.T) {
	h := &recordingHandler{}
	err := Dispatch(context.Background(), h, Envelope{RoutingKey: RoutingClipApproved, Payload: []byte(`not json`)})
	require.Error(t, err)
	require.Empty(t, h.calls)
}

func TestDispatch_HandlerErrorPropagates(t *testing.T) {
	h := &recordingHandler{err: errBoom}
	err := Dispatch(context.Background(), h, envelopeFor(t, RoutingClipSubmitted, ClipSubmittedPayload{SubmissionID: "s1"}))
	require.ErrorIs(t, err, errBoom)
}
