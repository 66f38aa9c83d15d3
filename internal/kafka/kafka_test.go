package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lactacare/internal/config"
	"lactacare/internal/database"
	"lactacare/internal/events"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func newCustodyLog(t *testing.T) *database.CustodyLog {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "custody.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewCustodyLog(db)
}

func registeredMessage(t *testing.T, eventID string, offset int64) *sarama.ConsumerMessage {
	t.Helper()
	payload, err := json.Marshal(events.ContainerRegisteredEvent{ContainerID: "c-1", OccurredAt: t0})
	require.NoError(t, err)
	return &sarama.ConsumerMessage{
		Topic:     "lactacare.containers",
		Partition: 0,
		Offset:    offset,
		Key:       []byte("c-1"),
		Value:     payload,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte("ContainerRegistered")},
			{Key: []byte("event-id"), Value: []byte(eventID)},
		},
	}
}

func TestCustodyProjector_StoresOncePerEventID(t *testing.T) {
	ctx := context.Background()
	custody := newCustodyLog(t)
	projector := NewCustodyProjector(custody, zap.NewNop())

	msg := toMessage(registeredMessage(t, "evt-1", 7))
	require.NoError(t, projector.Process(ctx, msg))
	require.NoError(t, projector.Process(ctx, msg))

	history, err := custody.History(ctx, "c-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ContainerRegistered", history[0].EventType)
	assert.True(t, t0.Equal(history[0].OccurredAt))
}

func TestCustodyProjector_DerivesIDWithoutHeader(t *testing.T) {
	ctx := context.Background()
	custody := newCustodyLog(t)
	projector := NewCustodyProjector(custody, zap.NewNop())

	msg := toMessage(registeredMessage(t, "", 42))
	require.NoError(t, projector.Process(ctx, msg))

	history, err := custody.History(ctx, "c-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "lactacare.containers-0-42", history[0].EventID)
}

func TestCustodyProjector_RejectsMalformedMessages(t *testing.T) {
	projector := NewCustodyProjector(newCustodyLog(t), zap.NewNop())

	tests := []struct {
		name string
		msg  Message
	}{
		{"no event type", Message{Topic: "x", Value: []byte(`{}`)}},
		{"unknown event type", Message{Topic: "x", EventType: "Nope", Value: []byte(`{}`)}},
		{"bad payload", Message{Topic: "x", EventType: "ContainerRegistered", Value: []byte(`{`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := projector.Process(context.Background(), tt.msg)
			require.Error(t, err)
			assert.True(t, IsPermanent(err))
		})
	}
}

type scriptedProcessor struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedProcessor) Process(ctx context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

type recordingDLQ struct {
	sent []*sarama.ConsumerMessage
}

func (d *recordingDLQ) Send(msg *sarama.ConsumerMessage, cause error) error {
	d.sent = append(d.sent, msg)
	return nil
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func listenerConfig(dlq bool) *config.Config {
	return &config.Config{MaxRetries: 2, RetryDelayMs: 1, DeadLetterQueue: dlq}
}

func consume(t *testing.T, h *claimHandler, msgs ...*sarama.ConsumerMessage) *fakeSession {
	t.Helper()
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(msgs))}
	for _, m := range msgs {
		claim.messages <- m
	}
	close(claim.messages)
	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, h.ConsumeClaim(session, claim))
	return session
}

func TestConsumeClaim_RetriesTransientFailures(t *testing.T) {
	processor := &scriptedProcessor{errs: []error{errors.New("database is locked")}}
	dlq := &recordingDLQ{}
	h := newHandler(listenerConfig(true), processor, dlq, zap.NewNop())

	session := consume(t, h, registeredMessage(t, "evt-1", 1))

	assert.Equal(t, 2, processor.calls)
	assert.Empty(t, dlq.sent)
	assert.Equal(t, []int64{1}, session.marked)
}

func TestConsumeClaim_ExhaustedRetriesGoToDLQ(t *testing.T) {
	failing := errors.New("database is locked")
	processor := &scriptedProcessor{errs: []error{failing, failing, failing}}
	dlq := &recordingDLQ{}
	h := newHandler(listenerConfig(true), processor, dlq, zap.NewNop())

	session := consume(t, h, registeredMessage(t, "evt-1", 1), registeredMessage(t, "evt-2", 2))

	assert.Equal(t, 4, processor.calls)
	require.Len(t, dlq.sent, 1)
	assert.Equal(t, int64(1), dlq.sent[0].Offset)
	assert.Equal(t, []int64{1, 2}, session.marked)
}

func TestConsumeClaim_PermanentFailureSkipsRetries(t *testing.T) {
	processor := &scriptedProcessor{errs: []error{permanent("bad payload")}}
	dlq := &recordingDLQ{}
	h := newHandler(listenerConfig(true), processor, dlq, zap.NewNop())

	consume(t, h, registeredMessage(t, "evt-1", 1))

	assert.Equal(t, 1, processor.calls)
	assert.Len(t, dlq.sent, 1)
}

func TestConsumeClaim_DLQDisabled(t *testing.T) {
	processor := &scriptedProcessor{errs: []error{permanent("bad payload")}}
	dlq := &recordingDLQ{}
	h := newHandler(listenerConfig(false), processor, dlq, zap.NewNop())

	session := consume(t, h, registeredMessage(t, "evt-1", 1))

	assert.Empty(t, dlq.sent)
	assert.Equal(t, []int64{1}, session.marked)
}

func TestDLQProducer_CarriesFailureContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()
	dlq := NewDLQProducerWithProducer(producer, "lactacare.dlq", zap.NewNop())

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		headers := make(map[string]string)
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if msg.Topic != "lactacare.dlq" {
			return errors.New("wrong topic: " + msg.Topic)
		}
		if headers["event-type"] != "ContainerRegistered" || headers["dlq-reason"] != "boom" {
			return errors.New("missing headers")
		}
		if headers["original-topic"] != "lactacare.containers" || headers["original-offset"] != "9" {
			return errors.New("missing origin")
		}
		return nil
	})

	require.NoError(t, dlq.Send(registeredMessage(t, "evt-1", 9), errors.New("boom")))
}

func TestToMessage_ReadsHeaders(t *testing.T) {
	raw := registeredMessage(t, "evt-9", 3)
	raw.Headers = append(raw.Headers, &sarama.RecordHeader{Key: []byte("timestamp"), Value: []byte("2024-01-01T08:00:00Z")})

	msg := toMessage(raw)

	assert.Equal(t, "ContainerRegistered", msg.EventType)
	assert.Equal(t, "evt-9", msg.EventID)
	assert.Equal(t, "c-1", msg.Key)
	assert.True(t, t0.Equal(msg.Timestamp))
}
