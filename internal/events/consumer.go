package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/SAP-F-2025/learning-analytics-service/internal/analyzers"
	apperrors "github.com/SAP-F-2025/learning-analytics-service/internal/errors"
)

// EventIngestor is what the consumer drives: normalize, persist, invalidate
// cache and schedule re-analysis. Implemented by the analytics service.
type EventIngestor interface {
	IngestRawEvent(ctx context.Context, raw analyzers.RawEvent) error
}

// ConsumerConfig holds configuration for the ingestion consumer
type ConsumerConfig struct {
	KafkaBrokers  []string
	Topic         string
	ConsumerGroup string
	Logger        *slog.Logger
}

// KafkaIngestionConsumer subscribes to the raw interaction feed. Delivery is
// at-least-once; duplicates are the store's problem (deduplication by event
// identity is a producer-side requirement, not enforced here).
type KafkaIngestionConsumer struct {
	subscriber message.Subscriber
	ingestor   EventIngestor
	topic      string
	logger     *slog.Logger
}

// NewKafkaIngestionConsumer creates a Kafka-backed consumer using Watermill
func NewKafkaIngestionConsumer(config ConsumerConfig, ingestor EventIngestor) (*KafkaIngestionConsumer, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       config.KafkaBrokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: config.ConsumerGroup,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}

	return &KafkaIngestionConsumer{
		subscriber: subscriber,
		ingestor:   ingestor,
		topic:      config.Topic,
		logger:     config.Logger,
	}, nil
}

// Run consumes the feed until ctx is cancelled. Malformed messages are
// logged and acknowledged: redelivering them can never make them parse.
func (c *KafkaIngestionConsumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, err)
	}

	c.logger.Info("Ingestion consumer started", "topic", c.topic)

	for msg := range messages {
		var raw analyzers.RawEvent
		if err := json.Unmarshal(msg.Payload, &raw); err != nil {
			c.logger.Error("Dropping unparseable interaction event",
				"message_id", msg.UUID,
				"error", err)
			msg.Ack()
			continue
		}

		if err := c.ingestor.IngestRawEvent(ctx, raw); err != nil {
			if apperrors.IsInfrastructure(err) {
				// Store or cache is down: leave the message for redelivery.
				c.logger.Error("Ingestion failed, message will be redelivered",
					"message_id", msg.UUID,
					"error", err)
				msg.Nack()
				continue
			}
			// Per-event normalization failure is terminal for this message.
			c.logger.Warn("Rejecting invalid interaction event",
				"message_id", msg.UUID,
				"error", err)
		}
		msg.Ack()
	}

	c.logger.Info("Ingestion consumer stopped", "topic", c.topic)
	return nil
}

// Close closes the subscriber and releases resources
func (c *KafkaIngestionConsumer) Close() error {
	return c.subscriber.Close()
}
