package registry

import (
	"context"
	"testing"
	"time"

	"lactacare/internal/alerts"
	"lactacare/internal/clock"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedRooms is a RoomDirectory backed by a map of capacities
type fixedRooms map[string]int

func (f fixedRooms) Room(ctx context.Context, id string) (domain.Room, error) {
	capacity, ok := f[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return domain.Room{ID: id, Name: id, Capacity: capacity}, nil
}

func (f fixedRooms) Rooms(ctx context.Context) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(f))
	for id, capacity := range f {
		out = append(out, domain.Room{ID: id, Name: id, Capacity: capacity})
	}
	return out, nil
}

type harness struct {
	ctx          context.Context
	clk          *clock.Manual
	recorder     *events.InMemoryEventPublisher
	alerts       *alerts.Dispatcher
	containers   *ContainerRegistry
	reservations *ReservationRegistry
	attention    *AttentionService
	containerDB  repository.ContainerRepository
}

func newHarness(t *testing.T, start time.Time, containerRepo repository.ContainerRepository) *harness {
	t.Helper()
	logger := zap.NewNop()
	clk := clock.NewManual(start)

	if containerRepo == nil {
		containerRepo = repository.NewContainerRepository()
	}

	bus := events.NewBus(logger)
	dispatcher := alerts.NewDispatcher(logger, alerts.WithClock(clk))
	recorder := events.NewEventPublisher(logger)
	bus.Subscribe("alerts", dispatcher.Handle)
	bus.Subscribe("recorder", events.Forward(recorder))

	opts := Options{Clock: clk, Alerts: dispatcher}
	containers := NewContainerRegistry(containerRepo, bus, logger, opts)
	reservations := NewReservationRegistry(repository.NewReservationRepository(), fixedRooms{"sala-1": 2, "sala-2": 1}, bus, logger, opts)

	return &harness{
		ctx:          context.Background(),
		clk:          clk,
		recorder:     recorder,
		alerts:       dispatcher,
		containers:   containers,
		reservations: reservations,
		attention:    NewAttentionService(containers, reservations, logger),
		containerDB:  containerRepo,
	}
}

func (h *harness) eventsOfType(eventType string) []events.Event {
	out := make([]events.Event, 0)
	for _, e := range h.recorder.Events() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func mustClockTime(t *testing.T, s string) domain.ClockTime {
	t.Helper()
	c, err := domain.ParseClockTime(s)
	require.NoError(t, err)
	return c
}
