package kafka

import (
	"fmt"
	"strconv"
	"time"

	"lactacare/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// DeadLetterSink receives messages that could not be processed
type DeadLetterSink interface {
	Send(msg *sarama.ConsumerMessage, cause error) error
}

// DLQProducer republishes failed messages to the dead letter topic with
// their original headers plus the failure context
type DLQProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewDLQProducer creates a Kafka producer for the dead letter topic
func NewDLQProducer(cfg *config.Config, logger *zap.Logger) (*DLQProducer, error) {
	logger.Info("🔌 Creating Kafka DLQ producer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("dlq_topic", cfg.DLQTopic),
	)

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID + "-dlq"
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaConfig)
	if err != nil {
		logger.Error("❌ Failed to create Kafka DLQ producer", zap.Error(err))
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}
	return NewDLQProducerWithProducer(producer, cfg.DLQTopic, logger), nil
}

func NewDLQProducerWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *DLQProducer {
	return &DLQProducer{producer: producer, topic: topic, logger: logger}
}

func (p *DLQProducer) Send(msg *sarama.ConsumerMessage, cause error) error {
	headers := make([]sarama.RecordHeader, 0, len(msg.Headers)+4)
	for _, h := range msg.Headers {
		if h != nil {
			headers = append(headers, *h)
		}
	}
	headers = append(headers,
		sarama.RecordHeader{Key: []byte("dlq-reason"), Value: []byte(cause.Error())},
		sarama.RecordHeader{Key: []byte("original-topic"), Value: []byte(msg.Topic)},
		sarama.RecordHeader{Key: []byte("original-partition"), Value: []byte(strconv.Itoa(int(msg.Partition)))},
		sarama.RecordHeader{Key: []byte("original-offset"), Value: []byte(strconv.FormatInt(msg.Offset, 10))},
	)

	out := &sarama.ProducerMessage{
		Topic:   p.topic,
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: headers,
	}
	if len(msg.Key) > 0 {
		out.Key = sarama.ByteEncoder(msg.Key)
	}

	partition, offset, err := p.producer.SendMessage(out)
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}
	p.logger.Warn("Message sent to DLQ",
		zap.String("topic", msg.Topic),
		zap.String("dlq_topic", p.topic),
		zap.Int32("dlq_partition", partition),
		zap.Int64("dlq_offset", offset),
		zap.Error(cause),
	)
	return nil
}

// Close closes the producer
func (p *DLQProducer) Close() error {
	return p.producer.Close()
}
