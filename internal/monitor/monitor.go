package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"lactacare/internal/clock"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/metrics"
	"lactacare/internal/repository"

	"go.uber.org/zap"
)

// TemperatureMonitor ingests readings per cold-storage unit and emits
// edge-triggered excursion events.
type TemperatureMonitor struct {
	mu         sync.Mutex
	repo       repository.ReadingRepository
	publisher  events.EventPublisher
	thresholds domain.Thresholds
	clock      clock.Clock
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewTemperatureMonitor(repo repository.ReadingRepository, publisher events.EventPublisher, thresholds domain.Thresholds, c clock.Clock, m *metrics.Metrics, logger *zap.Logger) *TemperatureMonitor {
	if c == nil {
		c = clock.System()
	}
	return &TemperatureMonitor{
		repo:       repo,
		publisher:  publisher,
		thresholds: thresholds,
		clock:      c,
		metrics:    m,
		logger:     logger,
	}
}

// RecordResult describes what ingesting one reading caused
type RecordResult struct {
	Reading        domain.TemperatureReading `json:"reading"`
	Classification domain.Classification     `json:"classification"`
	Latest         bool                      `json:"latest"`
	Excursion      bool                      `json:"excursion_raised"`
	Recovered      bool                      `json:"recovered"`
}

// UnitStatus is the latest reading of a unit classified with the current thresholds
type UnitStatus struct {
	UnitID         string                    `json:"unit_id"`
	Latest         domain.TemperatureReading `json:"latest"`
	Classification domain.Classification     `json:"classification"`
}

// Thresholds returns the limits readings are classified against
func (m *TemperatureMonitor) Thresholds() domain.Thresholds {
	return m.thresholds
}

// Record stores a reading. Only a reading that becomes the unit's latest is
// compared with the previous latest; older readings are stored silently.
func (m *TemperatureMonitor) Record(ctx context.Context, unitID string, temperatureC, humidityPct float64, observedAt time.Time) (*RecordResult, error) {
	if unitID == "" {
		return nil, domain.NewInvalidInput("unit id is required")
	}
	if math.IsNaN(temperatureC) || math.IsNaN(humidityPct) {
		return nil, domain.NewInvalidInput("reading for unit %s has no value", unitID)
	}
	now := m.clock.Now()
	if observedAt.IsZero() {
		observedAt = now
	}

	reading := domain.TemperatureReading{
		UnitID:       unitID,
		TemperatureC: temperatureC,
		HumidityPct:  humidityPct,
		ObservedAt:   observedAt.UTC(),
		RecordedAt:   now,
	}

	m.mu.Lock()
	previous, err := m.repo.Latest(ctx, unitID)
	if err == nil {
		err = m.repo.Append(ctx, &reading)
	}
	m.mu.Unlock()
	if err != nil {
		m.logger.Error("Failed to store reading", zap.String("unit_id", unitID), zap.Error(err))
		return nil, fmt.Errorf("failed to store reading: %w", err)
	}

	result := &RecordResult{
		Reading:        reading,
		Classification: m.thresholds.Classify(reading),
		Latest:         previous == nil || !reading.ObservedAt.Before(previous.ObservedAt),
	}

	pending := []events.Event{events.ReadingRecordedEvent{
		UnitID:       unitID,
		ReadingID:    reading.ID,
		TemperatureC: temperatureC,
		HumidityPct:  humidityPct,
		Thermal:      string(result.Classification.Thermal),
		Humidity:     string(result.Classification.Humidity),
		Latest:       result.Latest,
		ObservedAt:   reading.ObservedAt,
		OccurredAt:   now,
	}}

	if result.Latest {
		m.metrics.Reading(unitID, temperatureC)
		wasExcursion := previous != nil && m.thresholds.Classify(*previous).Excursion()

		switch {
		case result.Classification.Excursion() && !wasExcursion:
			result.Excursion = true
			m.metrics.Excursion(unitID, string(result.Classification.Thermal))
			m.logger.Warn("Temperature excursion",
				zap.String("unit_id", unitID),
				zap.Float64("temperature_c", temperatureC),
				zap.String("status", string(result.Classification.Thermal)),
			)
			pending = append(pending, events.TemperatureExcursionEvent{
				UnitID:       unitID,
				ReadingID:    reading.ID,
				TemperatureC: temperatureC,
				Status:       string(result.Classification.Thermal),
				ObservedAt:   reading.ObservedAt,
				OccurredAt:   now,
			})
		case !result.Classification.Excursion() && wasExcursion:
			result.Recovered = true
			m.logger.Info("Temperature back in range",
				zap.String("unit_id", unitID),
				zap.Float64("temperature_c", temperatureC),
			)
			pending = append(pending, events.TemperatureRecoveredEvent{
				UnitID:       unitID,
				ReadingID:    reading.ID,
				TemperatureC: temperatureC,
				ObservedAt:   reading.ObservedAt,
				OccurredAt:   now,
			})
		}

		if result.Classification.HumidityWarning() {
			m.logger.Debug("Humidity out of range",
				zap.String("unit_id", unitID),
				zap.Float64("humidity_pct", humidityPct),
				zap.String("status", string(result.Classification.Humidity)),
			)
		}
	} else {
		m.logger.Debug("Out-of-order reading stored without alerting",
			zap.String("unit_id", unitID),
			zap.Time("observed_at", reading.ObservedAt),
		)
	}

	for _, e := range pending {
		if err := m.publisher.Publish(ctx, e); err != nil {
			m.logger.Error("Failed to publish event", zap.String("event-type", e.EventType()), zap.Error(err))
		}
	}
	return result, nil
}

// Status classifies the unit's latest reading with the current thresholds
func (m *TemperatureMonitor) Status(ctx context.Context, unitID string) (*UnitStatus, error) {
	latest, err := m.repo.Latest(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, domain.NewNotFound("no readings for unit %s", unitID)
	}
	return &UnitStatus{
		UnitID:         unitID,
		Latest:         *latest,
		Classification: m.thresholds.Classify(*latest),
	}, nil
}

// Units returns the status of every unit with readings
func (m *TemperatureMonitor) Units(ctx context.Context) ([]UnitStatus, error) {
	ids, err := m.repo.Units(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UnitStatus, 0, len(ids))
	for _, id := range ids {
		status, err := m.Status(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *status)
	}
	return out, nil
}

// History returns up to limit readings of the unit, newest first
func (m *TemperatureMonitor) History(ctx context.Context, unitID string, limit int) ([]domain.TemperatureReading, error) {
	return m.repo.History(ctx, unitID, limit)
}

// SensorSource supplies readings for the periodic temperature tick
type SensorSource interface {
	Units() []string
	Read(ctx context.Context, unitID string, at time.Time) (temperatureC, humidityPct float64, err error)
}

// Tick polls every unit of the source once. A failing unit does not stop the others.
func (m *TemperatureMonitor) Tick(ctx context.Context, source SensorSource, now time.Time) (recorded int, failures int) {
	started := time.Now()
	for _, unit := range source.Units() {
		if ctx.Err() != nil {
			break
		}
		t, h, err := source.Read(ctx, unit, now)
		if err == nil {
			_, err = m.Record(ctx, unit, t, h, now)
		}
		if err != nil {
			failures++
			m.metrics.TickFailure("temperature")
			m.logger.Warn("Sensor poll failed", zap.String("unit_id", unit), zap.Error(err))
			continue
		}
		recorded++
	}
	m.metrics.ObserveTick("temperature", time.Since(started))
	return recorded, failures
}
