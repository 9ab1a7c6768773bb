package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

const (
	blockDuration    = 5 * time.Second
	claimIdleTimeout = 30 * time.Second
	readBatchSize    = 10
)

// Consumer reads events off the shared stream within a consumer group,
// retrying failed handlers up to maxDeliveries before routing the message
// to the dead-letter stream, the Redis Streams stand-in for a broker's
// dead-letter exchange.
type Consumer struct {
	client        *redis.Client
	stream        string
	deadLetter    string
	group         string
	consumerID    string
	maxDeliveries int64
	handler       Handler
	m             *metrics.Metrics
	log           logger.Logger
	shutdownCh    chan struct{}
}

// NewConsumer builds a Consumer bound to group on stream, dead-lettering to
// deadLetter after maxDeliveries failed attempts.
func NewConsumer(client *redis.Client, stream, group, deadLetter string, maxDeliveries int, handler Handler, m *metrics.Metrics, log logger.Logger) *Consumer {
	if maxDeliveries <= 0 {
		maxDeliveries = 3
	}
	return &Consumer{
		client:        client,
		stream:        stream,
		deadLetter:    deadLetter,
		group:         group,
		consumerID:    fmt.Sprintf("statistics-service-%s", uuid.New().String()[:8]),
		maxDeliveries: int64(maxDeliveries),
		handler:       handler,
		m:             m,
		log:           log,
		shutdownCh:    make(chan struct{}),
	}
}

// Start ensures the consumer group exists and launches the read and
// abandoned-message reclaim loops.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	c.log.Info("starting event consumer",
		logger.String("consumer_id", c.consumerID), logger.String("group", c.group))

	go c.consumeLoop(ctx)
	go c.claimAbandonedLoop(ctx)

	return nil
}

// Stop signals both loops to exit.
func (c *Consumer) Stop() {
	close(c.shutdownCh)
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return err
	}
	return nil
}

func isGroupExistsError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdownCh:
			return
		default:
			c.readAndProcess(ctx)
		}
	}
}

func (c *Consumer) readAndProcess(ctx context.Context) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumerID,
		Streams:  []string{c.stream, ">"},
		Count:    readBatchSize,
		Block:    blockDuration,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return
		}
		c.log.Error("stream read failed", logger.Error(err))
		time.Sleep(time.Second)
		return
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			c.processMessage(ctx, msg, 1)
		}
	}
}

func (c *Consumer) claimAbandonedLoop(ctx context.Context) {
	ticker := time.NewTicker(claimIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdownCh:
			return
		case <-ticker.C:
			c.claimAbandoned(ctx)
		}
	}
}

func (c *Consumer) claimAbandoned(ctx context.Context) {
	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumerID,
		MinIdle:  claimIdleTimeout,
		Count:    readBatchSize,
	}).Result()
	if err != nil {
		c.log.Error("auto-claim failed", logger.Error(err))
		return
	}

	for _, msg := range messages {
		deliveries := c.deliveryCount(ctx, msg.ID)
		c.log.Info("claimed abandoned message",
			logger.String("stream_id", msg.ID), logger.Int64("deliveries", deliveries))
		c.processMessage(ctx, msg, deliveries)
	}
}

// deliveryCount reports how many times msg has been delivered, consulting
// the pending entries list. A lookup failure is treated as a first
// delivery so a transient Redis hiccup never short-circuits straight to
// the dead letter stream.
func (c *Consumer) deliveryCount(ctx context.Context, messageID string) int64 {
	entries, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil || len(entries) == 0 {
		return 1
	}
	return entries[0].RetryCount
}

func (c *Consumer) processMessage(ctx context.Context, msg redis.XMessage, deliveries int64) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		c.log.Error("malformed message, dropping", logger.String("stream_id", msg.ID))
		c.ack(ctx, msg.ID)
		return
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		c.log.Error("envelope decode failed", logger.String("stream_id", msg.ID), logger.Error(err))
		c.ack(ctx, msg.ID)
		return
	}

	if err := Dispatch(ctx, c.handler, env); err != nil {
		c.log.Error("handler failed",
			logger.String("routing_key", string(env.RoutingKey)),
			logger.String("stream_id", msg.ID),
			logger.Int64("deliveries", deliveries),
			logger.Error(err))

		if deliveries >= c.maxDeliveries {
			c.m.EventsDeadLettered.WithLabelValues(string(env.RoutingKey)).Inc()
			c.m.EventsProcessed.WithLabelValues(string(env.RoutingKey), "dead_lettered").Inc()
			c.deadLetterMessage(ctx, msg, env, err)
			c.ack(ctx, msg.ID)
		} else {
			c.m.EventsProcessed.WithLabelValues(string(env.RoutingKey), "retry").Inc()
		}
		return // otherwise leave unacked for redelivery
	}

	c.m.EventsProcessed.WithLabelValues(string(env.RoutingKey), "success").Inc()
	c.ack(ctx, msg.ID)
}

func (c *Consumer) deadLetterMessage(ctx context.Context, msg redis.XMessage, env Envelope, cause error) {
	c.log.Warn("routing message to dead letter stream after exhausted retries",
		logger.String("stream_id", msg.ID), logger.String("routing_key", string(env.RoutingKey)))

	raw, err := json.Marshal(env)
	if err != nil {
		c.log.Error("dead letter marshal failed", logger.Error(err))
		return
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.deadLetter,
		Values: map[string]any{
			"routing_key": string(env.RoutingKey),
			"event":       string(raw),
			"error":       cause.Error(),
		},
	}).Err(); err != nil {
		c.log.Error("dead letter publish failed", logger.Error(err))
	}
}

func (c *Consumer) ack(ctx context.Context, messageID string) {
	if err := c.client.XAck(ctx, c.stream, c.group, messageID).Err(); err != nil {
		c.log.Error("ack failed", logger.String("stream_id", messageID), logger.Error(err))
	}
}
