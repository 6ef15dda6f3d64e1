package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/learning-analytics-service/internal/events"
)

// EventConfig holds configuration for the ingestion feed and event publishing
type EventConfig struct {
	Enabled          bool
	Publisher        string // kafka or mock
	KafkaBrokers     string
	InteractionTopic string
	AnalyticsTopic   string
	ConsumerGroup    string
}

func loadEventConfig() EventConfig {
	return EventConfig{
		Enabled:          getEnv("EVENTS_ENABLED", "true") == "true",
		Publisher:        getEnv("EVENTS_PUBLISHER", "kafka"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", "localhost:9092"),
		InteractionTopic: getEnv("INTERACTION_TOPIC", "student_interactions"),
		AnalyticsTopic:   getEnv("ANALYTICS_TOPIC", "analytics_results"),
		ConsumerGroup:    getEnv("CONSUMER_GROUP", "analytics_group"),
	}
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.AnalyticsTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.AnalyticsTopic,
			Logger:       logger,
		})
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}

// CreateIngestionConsumer creates the raw-interaction feed consumer
func (c *EventConfig) CreateIngestionConsumer(logger *slog.Logger, ingestor events.EventIngestor) (*events.KafkaIngestionConsumer, error) {
	return events.NewKafkaIngestionConsumer(events.ConsumerConfig{
		KafkaBrokers:  c.GetKafkaBrokers(),
		Topic:         c.InteractionTopic,
		ConsumerGroup: c.ConsumerGroup,
		Logger:        logger,
	}, ingestor)
}
