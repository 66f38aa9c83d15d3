package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lactacare/internal/database"
	"lactacare/internal/events"

	"go.uber.org/zap"
)

// Message is the broker-independent view of a consumed record
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       string
	EventType string
	EventID   string
	Timestamp time.Time
	Value     []byte
}

// CustodyAppender is the write side of the custody audit log
type CustodyAppender interface {
	Append(ctx context.Context, rec database.CustodyRecord) (bool, error)
}

// Processor handles one message; returning an error triggers retries and then the DLQ
type Processor interface {
	Process(ctx context.Context, msg Message) error
}

// permanentError marks messages that no retry can fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// IsPermanent reports whether err should skip retries
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func permanent(format string, args ...interface{}) error {
	return &permanentError{err: fmt.Errorf(format, args...)}
}

// CustodyProjector validates custody events and appends them to the audit log
type CustodyProjector struct {
	log    CustodyAppender
	now    func() time.Time
	logger *zap.Logger
}

func NewCustodyProjector(log CustodyAppender, logger *zap.Logger) *CustodyProjector {
	return &CustodyProjector{log: log, now: time.Now, logger: logger}
}

// Process decodes the event and stores it once per event id
func (p *CustodyProjector) Process(ctx context.Context, msg Message) error {
	if msg.EventType == "" {
		return permanent("message at %s/%d/%d has no event type", msg.Topic, msg.Partition, msg.Offset)
	}
	event, err := events.Decode(msg.EventType, msg.Value)
	if err != nil {
		return &permanentError{err: err}
	}

	var envelope struct {
		OccurredAt time.Time `json:"occurred_at"`
	}
	_ = json.Unmarshal(msg.Value, &envelope)
	occurredAt := envelope.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = msg.Timestamp
	}

	eventID := msg.EventID
	if eventID == "" {
		// redeliveries of the same record still collapse onto one row
		eventID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}
	key := event.PartitionKey()
	if key == "" {
		key = msg.Key
	}

	inserted, err := p.log.Append(ctx, database.CustodyRecord{
		EventID:      eventID,
		EventType:    msg.EventType,
		Topic:        msg.Topic,
		PartitionKey: key,
		Payload:      string(msg.Value),
		OccurredAt:   occurredAt,
		RecordedAt:   p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to project %s: %w", msg.EventType, err)
	}

	if !inserted {
		p.logger.Debug("Duplicate custody event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", msg.EventType),
		)
		return nil
	}
	p.logger.Info("Custody event recorded",
		zap.String("event_id", eventID),
		zap.String("event_type", msg.EventType),
		zap.String("partition_key", key),
	)
	return nil
}
