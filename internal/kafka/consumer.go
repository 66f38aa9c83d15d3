package kafka

import (
	"context"
	"fmt"
	"time"

	"lactacare/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Consumer projects the container, reservation and monitoring topics
// through one consumer group
type Consumer struct {
	group   sarama.ConsumerGroup
	handler *claimHandler
	logger  *zap.Logger
	groupID string
	topics  []string
}

func consumerConfig(cfg *config.Config) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.KafkaClientID
	sc.Version = sarama.V2_8_0_0
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	// a fresh group replays the whole custody history
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Return.Errors = true
	sc.Net.DialTimeout = 10 * time.Second
	sc.Net.ReadTimeout = 10 * time.Second
	sc.Net.WriteTimeout = 10 * time.Second
	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond
	return sc
}

func NewConsumer(cfg *config.Config, processor Processor, dlq DeadLetterSink, logger *zap.Logger) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, consumerConfig(cfg))
	if err != nil {
		logger.Error("❌ Failed to create Kafka consumer group",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("group_id", cfg.KafkaGroupID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create consumer group %s: %w", cfg.KafkaGroupID, err)
	}
	logger.Info("✅ Kafka consumer group created successfully",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	return &Consumer{
		group:   group,
		handler: newHandler(cfg, processor, dlq, logger),
		logger:  logger,
		groupID: cfg.KafkaGroupID,
		topics:  []string{cfg.KafkaTopicContainers, cfg.KafkaTopicReservations, cfg.KafkaTopicMonitoring},
	}, nil
}

// Start consumes until ctx is cancelled or the group fails
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("Consumer group error", zap.String("group_id", c.groupID), zap.Error(err))
		}
	}()

	c.logger.Info("Kafka consumer started", zap.Strings("topics", c.topics), zap.String("group_id", c.groupID))
	for {
		// Consume returns on every rebalance and must be called again
		if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
			return fmt.Errorf("consume %v: %w", c.topics, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// claimHandler settles each message of a claim: stored, dead-lettered or,
// on shutdown, left unmarked for the next owner
type claimHandler struct {
	processor  Processor
	dlq        DeadLetterSink
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func newHandler(cfg *config.Config, processor Processor, dlq DeadLetterSink, logger *zap.Logger) *claimHandler {
	h := &claimHandler{
		processor:  processor,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		logger:     logger,
	}
	if cfg.DeadLetterQueue {
		h.dlq = dlq
	}
	return h
}

func (h *claimHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes a partition in order. A message is marked only
// after it was stored or handed to the DLQ.
func (h *claimHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if !h.handle(session.Context(), message) {
				// shutting down; the message is redelivered to the next owner
				return nil
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handle reports whether the message is settled and can be marked
func (h *claimHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) bool {
	msg := toMessage(message)

	err := h.processWithRetry(ctx, msg)
	if err == nil {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	h.logger.Error("Failed to process event after retries",
		zap.String("event_type", msg.EventType),
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
		zap.Error(err),
	)
	if h.dlq == nil {
		return true
	}
	if err := h.dlq.Send(message, err); err != nil {
		h.logger.Error("Failed to send to DLQ", zap.Error(err))
	}
	return true
}

// processWithRetry retries transient failures with a linear backoff
func (h *claimHandler) processWithRetry(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			delay := h.retryDelay * time.Duration(attempt)
			h.logger.Info("Retrying event processing",
				zap.String("event_type", msg.EventType),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry interrupted: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		err := h.processor.Process(ctx, msg)
		if err == nil {
			if attempt > 0 {
				h.logger.Info("Event processed successfully after retry",
					zap.String("event_type", msg.EventType),
					zap.Int("attempts", attempt+1),
				)
			}
			return nil
		}
		lastErr = err

		if IsPermanent(err) {
			return err
		}
		h.logger.Warn("Event processing failed, will retry",
			zap.String("event_type", msg.EventType),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return fmt.Errorf("failed after %d attempts: %w", h.maxRetries+1, lastErr)
}

func toMessage(m *sarama.ConsumerMessage) Message {
	msg := Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       string(m.Key),
		Timestamp: m.Timestamp,
		Value:     m.Value,
	}
	for _, header := range m.Headers {
		if header == nil {
			continue
		}
		switch string(header.Key) {
		case "event-type":
			msg.EventType = string(header.Value)
		case "event-id":
			msg.EventID = string(header.Value)
		case "timestamp":
			if msg.Timestamp.IsZero() {
				msg.Timestamp, _ = time.Parse(time.RFC3339, string(header.Value))
			}
		}
	}
	return msg
}
