package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lactacare/internal/config"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	publishAttempts  = 3
	publishBaseDelay = 100 * time.Millisecond
)

// KafkaEventPublisher forwards custody, reservation and monitoring events to
// their Kafka topics, keyed by aggregate so each container, room or unit
// keeps its order within a partition.
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	config   *config.Config
}

func NewKafkaEventPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaEventPublisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.KafkaClientID
	sc.Version = sarama.V2_8_0_0
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = cfg.KafkaRetries
	sc.Producer.Timeout = 5 * time.Second

	switch cfg.KafkaAcks {
	case "0":
		sc.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		// idempotence is only allowed with acks=all and one in-flight request
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Producer.Idempotent = true
		sc.Net.MaxOpenRequests = 1
	}

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaEventPublisherWithProducer(producer, cfg, logger), nil
}

// NewKafkaEventPublisherWithProducer wraps an existing producer
func NewKafkaEventPublisherWithProducer(producer sarama.SyncProducer, cfg *config.Config, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, logger: logger, config: cfg}
}

// Publish sends the event, retrying with exponential backoff (100ms, 200ms)
func (p *KafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	topic, err := topicFor(p.config, event)
	if err != nil {
		return err
	}
	msg, err := newProducerMessage(topic, event)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("publish %s cancelled: %w", event.EventType(), err)
		}

		partition, offset, err := p.producer.SendMessage(msg)
		if err == nil {
			p.logger.Debug("Event published to Kafka",
				zap.String("topic", topic),
				zap.String("event-type", event.EventType()),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
			)
			return nil
		}
		lastErr = err
		p.logger.Warn("Kafka publish failed",
			zap.String("topic", topic),
			zap.String("event-type", event.EventType()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < publishAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("publish %s cancelled: %w", event.EventType(), ctx.Err())
			case <-time.After(publishBaseDelay << (attempt - 1)):
			}
		}
	}
	return fmt.Errorf("failed to publish %s after %d attempts: %w", event.EventType(), publishAttempts, lastErr)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func newProducerMessage(topic string, event Event) (*sarama.ProducerMessage, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", event.EventType(), err)
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.EventType())},
			{Key: []byte("event-id"), Value: []byte(uuid.NewString())},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}
	if key := event.PartitionKey(); key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	return msg, nil
}

// topicFor routes an event to the topic of its aggregate family
func topicFor(cfg *config.Config, event Event) (string, error) {
	switch event.(type) {
	case ContainerRegisteredEvent, ContainerFlaggedEvent, ContainerFlagCancelledEvent,
		ContainerNearExpiryEvent, ContainerPickupOverdueEvent, ContainerExpiredEvent,
		ContainerWithdrawnEvent, ContainerDeletedEvent:
		return cfg.KafkaTopicContainers, nil
	case ReservationCreatedEvent, ReservationRejectedEvent, ReservationConfirmedEvent,
		ReservationCancelledEvent, ReservationCompletedEvent:
		return cfg.KafkaTopicReservations, nil
	case ReadingRecordedEvent, TemperatureExcursionEvent, TemperatureRecoveredEvent:
		return cfg.KafkaTopicMonitoring, nil
	}
	return "", fmt.Errorf("no topic for event type %T", event)
}
