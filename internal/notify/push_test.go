package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lactacare/internal/alerts"
	"lactacare/internal/domain"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*messaging.Message
	fail bool
}

func (s *fakeSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("unavailable")
	}
	s.sent = append(s.sent, message)
	return "projects/x/messages/1", nil
}

func TestPushNotifier_PushesRaisedAlerts(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	notifier := NewPushNotifier(sender, "lactario-staff", zap.NewNop())
	dispatcher := alerts.NewDispatcher(zap.NewNop(), alerts.WithListener(notifier.OnChange))

	raised := dispatcher.Raise(ctx, domain.AlertTemperatureExcursion, "fridge-1", "Unit fridge-1 is too warm: 7.0°C")
	dispatcher.MarkRead(ctx, raised.ID)
	notifier.Close()

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "lactario-staff", msg.Topic)
	assert.Equal(t, "Temperature out of range", msg.Notification.Title)
	assert.Equal(t, "Unit fridge-1 is too warm: 7.0°C", msg.Notification.Body)
	assert.Equal(t, "fridge-1", msg.Data["subject_id"])
	assert.Equal(t, "1", msg.Data["alert_id"])
	assert.Equal(t, "high", msg.Android.Priority)
}

func TestPushNotifier_SendFailureDoesNotStopDelivery(t *testing.T) {
	sender := &fakeSender{fail: true}
	notifier := NewPushNotifier(sender, "staff", zap.NewNop())

	notifier.OnChange(context.Background(), alerts.Change{
		Type:    alerts.ChangeRaised,
		Records: []domain.AlertRecord{{ID: 1, Kind: domain.AlertNearExpiry}, {ID: 2, Kind: domain.AlertContainerExpired}},
	})
	notifier.Close()

	assert.Empty(t, sender.sent)
}

func TestPushNotifier_IgnoresAfterClose(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewPushNotifier(sender, "staff", zap.NewNop())
	notifier.Close()
	notifier.Close()

	notifier.OnChange(context.Background(), alerts.Change{
		Type:    alerts.ChangeRaised,
		Records: []domain.AlertRecord{{ID: 1, Kind: domain.AlertNearExpiry}},
	})

	assert.Empty(t, sender.sent)
}
