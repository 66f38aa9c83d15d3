package monitor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"lactacare/internal/alerts"
	"lactacare/internal/clock"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var start = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	ctx      context.Context
	monitor  *TemperatureMonitor
	alerts   *alerts.Dispatcher
	recorder *events.InMemoryEventPublisher
}

func newFixture() *fixture {
	logger := zap.NewNop()
	clk := clock.NewManual(start)
	bus := events.NewBus(logger)
	dispatcher := alerts.NewDispatcher(logger, alerts.WithClock(clk))
	recorder := events.NewEventPublisher(logger)
	bus.Subscribe("alerts", dispatcher.Handle)
	bus.Subscribe("recorder", events.Forward(recorder))

	return &fixture{
		ctx:      context.Background(),
		monitor:  NewTemperatureMonitor(repository.NewReadingRepository(), bus, domain.DefaultThresholds(), clk, nil, logger),
		alerts:   dispatcher,
		recorder: recorder,
	}
}

func (f *fixture) record(t *testing.T, unit string, temp float64, at time.Time) *RecordResult {
	t.Helper()
	res, err := f.monitor.Record(f.ctx, unit, temp, 80, at)
	require.NoError(t, err)
	return res
}

func TestTemperatureMonitor_ExcursionIsEdgeTriggered(t *testing.T) {
	f := newFixture()

	f.record(t, "U", 4.0, start)
	second := f.record(t, "U", 7.0, start.Add(time.Minute))
	third := f.record(t, "U", 7.2, start.Add(2*time.Minute))

	assert.True(t, second.Excursion)
	assert.False(t, third.Excursion)
	excursions := f.alerts.List(alerts.ByKind(domain.AlertTemperatureExcursion))
	require.Len(t, excursions, 1)
	assert.Equal(t, "U", excursions[0].SubjectID)
}

func TestTemperatureMonitor_RecoveryRearms(t *testing.T) {
	f := newFixture()

	f.record(t, "U", 7.0, start)
	recovered := f.record(t, "U", 5.0, start.Add(time.Minute))
	f.record(t, "U", 0.5, start.Add(2*time.Minute))

	assert.True(t, recovered.Recovered)
	assert.Len(t, f.alerts.List(alerts.ByKind(domain.AlertTemperatureExcursion)), 2)
	assert.Contains(t, f.recorder.Types(), "TemperatureRecovered")
}

func TestTemperatureMonitor_FirstReadingOutOfRange(t *testing.T) {
	f := newFixture()

	res := f.record(t, "U", 0.2, start)

	assert.True(t, res.Excursion)
	assert.Equal(t, domain.ThermalTooCold, res.Classification.Thermal)
}

func TestTemperatureMonitor_WarmToColdDoesNotReraise(t *testing.T) {
	f := newFixture()

	f.record(t, "U", 4.0, start)
	f.record(t, "U", 8.0, start.Add(time.Minute))
	res := f.record(t, "U", 0.0, start.Add(2*time.Minute))

	assert.False(t, res.Excursion)
	assert.Len(t, f.alerts.List(alerts.All()), 1)
}

func TestTemperatureMonitor_ThresholdBoundsAreInRange(t *testing.T) {
	f := newFixture()

	assert.False(t, f.record(t, "U", 6.0, start).Excursion)
	assert.False(t, f.record(t, "U", 1.0, start.Add(time.Minute)).Excursion)
	assert.Equal(t, 0, f.alerts.UnreadCount())
}

func TestTemperatureMonitor_HumidityIsOnlyAWarning(t *testing.T) {
	f := newFixture()

	res, err := f.monitor.Record(f.ctx, "U", 4.0, 97, start)

	require.NoError(t, err)
	assert.Equal(t, domain.HumidityHigh, res.Classification.Humidity)
	assert.False(t, res.Excursion)
	assert.Equal(t, 0, f.alerts.UnreadCount())
}

func TestTemperatureMonitor_OutOfOrderReadingNotAlerted(t *testing.T) {
	f := newFixture()

	f.record(t, "U", 4.0, start.Add(time.Hour))
	late := f.record(t, "U", 9.0, start)

	assert.False(t, late.Latest)
	assert.False(t, late.Excursion)
	status, err := f.monitor.Status(f.ctx, "U")
	require.NoError(t, err)
	assert.Equal(t, 4.0, status.Latest.TemperatureC)

	history, err := f.monitor.History(f.ctx, "U", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestTemperatureMonitor_UnitsAreIndependent(t *testing.T) {
	f := newFixture()

	f.record(t, "fridge-1", 7.0, start)
	f.record(t, "fridge-2", 7.0, start)
	f.record(t, "fridge-1", 7.5, start.Add(time.Minute))

	assert.Len(t, f.alerts.List(alerts.ByKind(domain.AlertTemperatureExcursion)), 2)

	units, err := f.monitor.Units(f.ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "fridge-1", units[0].UnitID)
	assert.Equal(t, domain.ThermalTooWarm, units[0].Classification.Thermal)
}

func TestTemperatureMonitor_Record_Error_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.monitor.Record(f.ctx, "", 4, 80, start)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.monitor.Record(f.ctx, "U", math.NaN(), 80, start)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTemperatureMonitor_StatusUnknownUnit(t *testing.T) {
	f := newFixture()

	_, err := f.monitor.Status(f.ctx, "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type flakySource struct {
	values map[string]float64
}

func (s flakySource) Units() []string { return []string{"a", "broken", "b"} }

func (s flakySource) Read(ctx context.Context, unit string, at time.Time) (float64, float64, error) {
	v, ok := s.values[unit]
	if !ok {
		return 0, 0, errors.New("sensor offline")
	}
	return v, 80, nil
}

func TestTemperatureMonitor_TickIsolatesFailingSensor(t *testing.T) {
	f := newFixture()

	recorded, failures := f.monitor.Tick(f.ctx, flakySource{values: map[string]float64{"a": 4, "b": 9}}, start)

	assert.Equal(t, 2, recorded)
	assert.Equal(t, 1, failures)
	assert.Len(t, f.alerts.List(alerts.ByKind(domain.AlertTemperatureExcursion)), 1)
}

func TestSimulatedSource_StaysBounded(t *testing.T) {
	source := NewSimulatedSource([]string{"fridge-1", "freezer-1"}, 42)
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		for _, unit := range source.Units() {
			temp, humidity, err := source.Read(ctx, unit, start.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, temp, -2.0)
			assert.LessOrEqual(t, temp, 12.0)
			assert.GreaterOrEqual(t, humidity, 40.0)
			assert.LessOrEqual(t, humidity, 100.0)
		}
	}
}
