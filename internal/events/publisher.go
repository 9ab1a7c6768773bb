package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

// asyncPublishTimeout bounds a fire-and-forget publish so a stuck Redis
// connection can't leak goroutines.
const asyncPublishTimeout = 5 * time.Second

// Publisher publishes outgoing events onto the shared event stream. It is
// declared as an interface so internal/stats and internal/botdetect depend
// on the contract, not on the Redis Streams implementation underneath.
type Publisher interface {
	Publish(ctx context.Context, routingKey RoutingKey, payload any) error
	PublishAsync(routingKey RoutingKey, payload any)
}

// StreamPublisher publishes events to a Redis stream, playing the role of
// an exchange publish with a routing key.
type StreamPublisher struct {
	client  *redis.Client
	stream  string
	service string
	log     logger.Logger
}

// NewStreamPublisher creates a Redis-Streams-backed Publisher.
func NewStreamPublisher(client *redis.Client, stream, service string, log logger.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, service: service, log: log}
}

// Publish marshals payload and appends it to the stream with the given
// routing key attached.
func (p *StreamPublisher) Publish(ctx context.Context, routingKey RoutingKey, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	env := Envelope{
		RoutingKey: routingKey,
		Service:    p.service,
		Timestamp:  time.Now().UTC(),
		Payload:    body,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	res := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"routing_key": string(routingKey),
			"event":       string(raw),
		},
	})
	if err := res.Err(); err != nil {
		p.log.Error("publish failed",
			logger.String("routing_key", string(routingKey)), logger.Error(err))
		return fmt.Errorf("xadd: %w", err)
	}

	p.log.Info("published event",
		logger.String("routing_key", string(routingKey)), logger.String("stream_id", res.Val()))
	return nil
}

// PublishAsync publishes in the background; failures are logged, never
// returned, matching the "publish failures are logged and swallowed" rule
// applied throughout the stats/botdetect pipelines.
func (p *StreamPublisher) PublishAsync(routingKey RoutingKey, payload any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, routingKey, payload); err != nil {
			p.log.Error("async publish failed",
				logger.String("routing_key", string(routingKey)), logger.Error(err))
		}
	}()
}
