package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lactacare/internal/clock"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/metrics"
	"lactacare/internal/repository"

	"go.uber.org/zap"
)

// ReservationRegistry owns reservations and enforces room capacity over
// overlapping Pending and Confirmed reservations.
type ReservationRegistry struct {
	mu         sync.Mutex
	repo       repository.ReservationRepository
	rooms      repository.RoomDirectory
	publisher  events.EventPublisher
	maxRetries int
	clock      clock.Clock
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewReservationRegistry(repo repository.ReservationRepository, rooms repository.RoomDirectory, publisher events.EventPublisher, logger *zap.Logger, opts Options) *ReservationRegistry {
	opts = opts.withDefaults()
	return &ReservationRegistry{
		repo:       repo,
		rooms:      rooms,
		publisher:  publisher,
		maxRetries: opts.MaxRetries,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// CreateReservationCommand carries a reservation request
type CreateReservationCommand struct {
	PatientID string
	RoomID    string
	Date      time.Time
	StartTime domain.ClockTime
	EndTime   domain.ClockTime
}

// Create books a slot. It fails with CapacityExceeded when the overlapping
// active reservations of the room already equal its capacity.
func (r *ReservationRegistry) Create(ctx context.Context, cmd CreateReservationCommand) (*domain.Reservation, error) {
	now := r.clock.Now()
	res, err := domain.NewReservation(cmd.PatientID, cmd.RoomID, cmd.Date, cmd.StartTime, cmd.EndTime, now)
	if err != nil {
		r.reject(ctx, cmd, err, now)
		return nil, err
	}

	room, err := r.rooms.Room(ctx, cmd.RoomID)
	if err != nil {
		r.reject(ctx, cmd, err, now)
		return nil, err
	}

	r.mu.Lock()
	active, err := r.countOverlapping(ctx, res)
	if err == nil && active >= room.Capacity {
		err = domain.NewCapacityExceeded("room %s is full for %s %s-%s (capacity %d)",
			room.ID, res.Date.Format(domain.DateLayout), res.StartTime, res.EndTime, room.Capacity)
	}
	if err == nil {
		err = r.repo.Create(ctx, res)
	}
	r.mu.Unlock()

	if err != nil {
		if domain.KindOf(err) == "" {
			r.logger.Error("Failed to create reservation", zap.Error(err))
			return nil, fmt.Errorf("failed to create reservation: %w", err)
		}
		r.reject(ctx, cmd, err, now)
		return nil, err
	}

	r.logger.Info("Reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", res.RoomID),
		zap.String("slot", res.StartTime.String()+"-"+res.EndTime.String()),
	)
	r.metrics.Transition("reservation", string(res.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ReservationCreatedEvent{
		ReservationID: res.ID,
		PatientID:     res.PatientID,
		RoomID:        res.RoomID,
		Date:          res.Date.Format(domain.DateLayout),
		SlotKey:       res.SlotKey(),
		StartTime:     res.StartTime.String(),
		EndTime:       res.EndTime.String(),
		ActiveInSlot:  active + 1,
		Capacity:      room.Capacity,
		OccurredAt:    now,
	}})
	return res, nil
}

func (r *ReservationRegistry) countOverlapping(ctx context.Context, res *domain.Reservation) (int, error) {
	sameDay, err := r.repo.ListByRoomAndDate(ctx, res.RoomID, res.Date)
	if err != nil {
		return 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	count := 0
	for _, other := range sameDay {
		if other.IsActive() && other.Overlaps(res.RoomID, res.Date, res.StartTime, res.EndTime) {
			count++
		}
	}
	return count, nil
}

func (r *ReservationRegistry) reject(ctx context.Context, cmd CreateReservationCommand, cause error, now time.Time) {
	reason := string(domain.KindOf(cause))
	r.metrics.ReservationRejected(reason)
	r.logger.Warn("Reservation rejected",
		zap.String("room_id", cmd.RoomID),
		zap.String("patient_id", cmd.PatientID),
		zap.Error(cause),
	)
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ReservationRejectedEvent{
		PatientID:  cmd.PatientID,
		RoomID:     cmd.RoomID,
		Date:       domain.DateOf(cmd.Date).Format(domain.DateLayout),
		StartTime:  cmd.StartTime.String(),
		EndTime:    cmd.EndTime.String(),
		Reason:     reason,
		OccurredAt: now,
	}})
}

// Confirm moves a pending reservation to confirmed
func (r *ReservationRegistry) Confirm(ctx context.Context, id string) (*domain.Reservation, error) {
	now := r.clock.Now()
	res, err := r.mutate(ctx, id, func(res *domain.Reservation) error {
		return res.Confirm(now)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Reservation confirmed", zap.String("reservation_id", id))
	r.metrics.Transition("reservation", string(res.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ReservationConfirmedEvent{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		OccurredAt:    now,
	}})
	return res, nil
}

// Cancel releases the reservation's capacity immediately
func (r *ReservationRegistry) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	now := r.clock.Now()
	var previous domain.ReservationState
	res, err := r.mutate(ctx, id, func(res *domain.Reservation) error {
		previous = res.State
		return res.Cancel(now)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Reservation cancelled", zap.String("reservation_id", id))
	r.metrics.Transition("reservation", string(res.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ReservationCancelledEvent{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		PreviousState: string(previous),
		OccurredAt:    now,
	}})
	return res, nil
}

// Complete marks a confirmed reservation as attended
func (r *ReservationRegistry) Complete(ctx context.Context, id string) (*domain.Reservation, error) {
	now := r.clock.Now()
	res, err := r.mutate(ctx, id, func(res *domain.Reservation) error {
		return res.Complete(now)
	})
	if err != nil {
		return nil, err
	}
	r.completed(ctx, res, nil, now)
	return res, nil
}

func (r *ReservationRegistry) completed(ctx context.Context, res *domain.Reservation, containerIDs []string, now time.Time) {
	r.logger.Info("Reservation completed",
		zap.String("reservation_id", res.ID),
		zap.Int("containers", len(containerIDs)),
	)
	r.metrics.Transition("reservation", string(res.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ReservationCompletedEvent{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		ContainerIDs:  containerIDs,
		OccurredAt:    now,
	}})
}

// Get returns a snapshot of one reservation
func (r *ReservationRegistry) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.repo.FindByID(ctx, id)
}

// List returns reservations matching the filter ordered by date and start time
func (r *ReservationRegistry) List(ctx context.Context, filter repository.ReservationFilter) ([]*domain.Reservation, error) {
	return r.repo.List(ctx, filter)
}

// Occupancy returns the number of active reservations overlapping the slot
func (r *ReservationRegistry) Occupancy(ctx context.Context, roomID string, date time.Time, start, end domain.ClockTime) (int, error) {
	if _, err := r.rooms.Room(ctx, roomID); err != nil {
		return 0, err
	}
	slot := &domain.Reservation{RoomID: roomID, Date: domain.DateOf(date), StartTime: start, EndTime: end}
	return r.countOverlapping(ctx, slot)
}

func (r *ReservationRegistry) mutate(ctx context.Context, id string, apply func(res *domain.Reservation) error) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; ; attempt++ {
		res, err := r.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := apply(res); err != nil {
			return nil, err
		}
		err = r.repo.Update(ctx, res)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= r.maxRetries {
			return nil, err
		}
		r.metrics.VersionConflict("reservation")
		r.logger.Debug("Version conflict, retrying reservation update",
			zap.String("reservation_id", id),
			zap.Int("attempt", attempt),
		)
	}
}
