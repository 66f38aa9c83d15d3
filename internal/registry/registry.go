package registry

import (
	"context"
	"time"

	"lactacare/internal/clock"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/metrics"

	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// PendingAlerts reports unread alerts so ticks do not re-emit notifications
type PendingAlerts interface {
	HasPending(kind domain.AlertKind, subjectID string) bool
}

// Options are shared by the registries; zero values fall back to defaults
type Options struct {
	Rules      domain.Rules
	MaxRetries int
	Clock      clock.Clock
	Alerts     PendingAlerts
	Metrics    *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Rules.NearExpiryWindow <= 0 {
		o.Rules.NearExpiryWindow = domain.DefaultNearExpiryWindow
	}
	if o.Rules.PickupWindow <= 0 {
		o.Rules.PickupWindow = domain.DefaultPickupWindow
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.Clock == nil {
		o.Clock = clock.System()
	}
	return o
}

// publishAll delivers events in order; delivery failures never undo a committed transition
func publishAll(ctx context.Context, publisher events.EventPublisher, logger *zap.Logger, evts []events.Event) {
	for _, e := range evts {
		if err := publisher.Publish(ctx, e); err != nil {
			logger.Error("Failed to publish event",
				zap.String("event-type", e.EventType()),
				zap.String("key", e.PartitionKey()),
				zap.Error(err),
			)
		}
	}
}

// TickFailure is an entity that could not be evaluated in a tick
type TickFailure struct {
	EntityID string `json:"entity_id"`
	Error    string `json:"error"`
}

// TickReport summarises one container tick pass
type TickReport struct {
	At            time.Time     `json:"at"`
	Duration      time.Duration `json:"duration_ns"`
	Evaluated     int           `json:"evaluated"`
	Expired       []string      `json:"expired"`
	Withdrawn     []string      `json:"withdrawn"`
	NearExpiry    []string      `json:"near_expiry"`
	PickupOverdue []string      `json:"pickup_overdue"`
	Failures      []TickFailure `json:"failures"`
}

func newTickReport(at time.Time) TickReport {
	return TickReport{
		At:            at,
		Expired:       []string{},
		Withdrawn:     []string{},
		NearExpiry:    []string{},
		PickupOverdue: []string{},
		Failures:      []TickFailure{},
	}
}
