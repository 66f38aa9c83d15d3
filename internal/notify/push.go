package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"lactacare/internal/alerts"
	"lactacare/internal/domain"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	queueSize   = 256
	sendTimeout = 10 * time.Second
)

// Sender delivers one FCM message; *messaging.Client implements it
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NewFCMClient initializes the Firebase app from a service account file
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return client, nil
}

// PushNotifier forwards newly raised alerts to an FCM topic that staff
// devices subscribe to. Delivery runs on its own goroutine so a slow push
// never holds up a tick.
type PushNotifier struct {
	sender Sender
	topic  string
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan domain.AlertRecord
	done   chan struct{}
}

func NewPushNotifier(sender Sender, topic string, logger *zap.Logger) *PushNotifier {
	n := &PushNotifier{
		sender: sender,
		topic:  topic,
		logger: logger,
		queue:  make(chan domain.AlertRecord, queueSize),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

// OnChange is registered as a dispatcher listener; only raised alerts are pushed
func (n *PushNotifier) OnChange(ctx context.Context, change alerts.Change) {
	if change.Type != alerts.ChangeRaised {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, record := range change.Records {
		select {
		case n.queue <- record:
		default:
			n.logger.Warn("Push queue full, dropping notification", zap.Int64("alert_id", record.ID))
		}
	}
}

func (n *PushNotifier) run() {
	defer close(n.done)
	for record := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		id, err := n.sender.Send(ctx, n.message(record))
		cancel()
		if err != nil {
			n.logger.Warn("Failed to send push notification",
				zap.Int64("alert_id", record.ID),
				zap.String("kind", string(record.Kind)),
				zap.Error(err),
			)
			continue
		}
		n.logger.Debug("Push notification sent",
			zap.Int64("alert_id", record.ID),
			zap.String("message_id", id),
		)
	}
}

func (n *PushNotifier) message(record domain.AlertRecord) *messaging.Message {
	return &messaging.Message{
		Topic: n.topic,
		Notification: &messaging.Notification{
			Title: title(record.Kind),
			Body:  record.Message,
		},
		Data: map[string]string{
			"alert_id":   strconv.FormatInt(record.ID, 10),
			"kind":       string(record.Kind),
			"subject_id": record.SubjectID,
		},
		Android: &messaging.AndroidConfig{Priority: priority(record.Kind)},
	}
}

// Close stops accepting alerts and waits until queued ones are sent
func (n *PushNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()
	<-n.done
}

func title(kind domain.AlertKind) string {
	switch kind {
	case domain.AlertNearExpiry:
		return "Container near expiry"
	case domain.AlertPickupOverdue:
		return "Pickup overdue"
	case domain.AlertTemperatureExcursion:
		return "Temperature out of range"
	case domain.AlertContainerWithdrawn:
		return "Container withdrawn"
	case domain.AlertContainerExpired:
		return "Container expired"
	case domain.AlertCapacityReached:
		return "Room full"
	default:
		return "Lactation room alert"
	}
}

func priority(kind domain.AlertKind) string {
	if kind == domain.AlertTemperatureExcursion || kind == domain.AlertPickupOverdue {
		return "high"
	}
	return "normal"
}
