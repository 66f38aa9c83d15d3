package registry

import (
	"context"
	"errors"
	"time"

	"lactacare/internal/domain"

	"go.uber.org/zap"
)

// AttentionService records the clinical attention (retrieval act) that
// completes a reservation and hands over the patient's flagged containers.
//
// It holds the container registry lock and then the reservation registry
// lock for the whole operation. No other path takes both, and any that does
// must take them in the same order.
type AttentionService struct {
	containers   *ContainerRegistry
	reservations *ReservationRegistry
	logger       *zap.Logger
}

func NewAttentionService(containers *ContainerRegistry, reservations *ReservationRegistry, logger *zap.Logger) *AttentionService {
	return &AttentionService{
		containers:   containers,
		reservations: reservations,
		logger:       logger,
	}
}

// AttentionResult is what RecordAttention changed
type AttentionResult struct {
	Reservation *domain.Reservation
	Containers  []*domain.Container
}

// handover is one container withdrawal staged by an attention
type handover struct {
	before    *domain.Container
	after     *domain.Container
	flaggedAt time.Time
}

// RecordAttention validates every requested hand-over before applying any of
// them: the reservation must be Confirmed and every container must be flagged
// for pickup and owned by the reservation's patient. Either every container
// is withdrawn and the reservation completed, or nothing changes.
func (s *AttentionService) RecordAttention(ctx context.Context, reservationID string, containerIDs []string) (*AttentionResult, error) {
	now := s.containers.clock.Now()

	s.containers.mu.Lock()
	s.reservations.mu.Lock()
	res, staged, err := s.applyWithRetry(ctx, reservationID, containerIDs, now)
	s.reservations.mu.Unlock()
	s.containers.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := &AttentionResult{Reservation: res, Containers: make([]*domain.Container, 0, len(staged))}
	for _, h := range staged {
		s.containers.withdrawn(ctx, h.after, h.flaggedAt, res.ID, now)
		result.Containers = append(result.Containers, h.after)
	}
	s.reservations.completed(ctx, res, containerIDs, now)

	s.logger.Info("Attention recorded",
		zap.String("reservation_id", res.ID),
		zap.Int("containers", len(result.Containers)),
	)
	return result, nil
}

// applyWithRetry re-validates from fresh reads after a version conflict, so a
// write that raced in from outside the registries is judged on its result.
func (s *AttentionService) applyWithRetry(ctx context.Context, reservationID string, containerIDs []string, now time.Time) (*domain.Reservation, []handover, error) {
	for attempt := 1; ; attempt++ {
		res, staged, err := s.apply(ctx, reservationID, containerIDs, now)
		if err == nil {
			return res, staged, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= s.containers.maxRetries {
			return nil, nil, err
		}
		s.containers.metrics.VersionConflict("attention")
		s.logger.Debug("Version conflict, retrying attention",
			zap.String("reservation_id", reservationID),
			zap.Int("attempt", attempt),
		)
	}
}

// apply runs with both registry locks held
func (s *AttentionService) apply(ctx context.Context, reservationID string, containerIDs []string, now time.Time) (*domain.Reservation, []handover, error) {
	res, err := s.reservations.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if res.State != domain.ReservationConfirmed {
		return nil, nil, domain.NewInvalidTransition("reservation %s cannot be completed from state %s", res.ID, res.State)
	}

	staged := make([]handover, 0, len(containerIDs))
	seen := make(map[string]bool, len(containerIDs))
	for _, id := range containerIDs {
		if seen[id] {
			return nil, nil, domain.NewInvalidInput("container %s listed twice", id)
		}
		seen[id] = true

		c, err := s.containers.repo.FindByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if c.OwnerPatientID != res.PatientID {
			return nil, nil, domain.NewInvalidInput("container %s does not belong to patient %s", id, res.PatientID)
		}
		h := handover{before: c.Clone(), after: c}
		if c.FlaggedAt != nil {
			h.flaggedAt = *c.FlaggedAt
		}
		if err := c.Withdraw(now); err != nil {
			return nil, nil, domain.NewInvalidTransition("container %s is not flagged for pickup (state %s)", id, h.before.State)
		}
		staged = append(staged, h)
	}

	for i := range staged {
		if err := s.containers.repo.Update(ctx, staged[i].after); err != nil {
			s.logger.Warn("Container hand-over failed during attention, rolling back",
				zap.String("reservation_id", res.ID),
				zap.String("container_id", staged[i].after.ID),
				zap.Error(err),
			)
			s.rollback(ctx, staged[:i])
			return nil, nil, err
		}
	}

	if err := res.Complete(now); err != nil {
		s.rollback(ctx, staged)
		return nil, nil, err
	}
	if err := s.reservations.repo.Update(ctx, res); err != nil {
		s.logger.Warn("Reservation completion failed during attention, rolling back",
			zap.String("reservation_id", res.ID),
			zap.Error(err),
		)
		s.rollback(ctx, staged)
		return nil, nil, err
	}
	return res, staged, nil
}

// rollback restores containers already written by a failed attention
func (s *AttentionService) rollback(ctx context.Context, written []handover) {
	for _, h := range written {
		restore := h.before.Clone()
		restore.Version = h.after.Version
		if err := s.containers.repo.Update(ctx, restore); err != nil {
			s.logger.Error("Failed to roll back container hand-over",
				zap.String("container_id", h.before.ID),
				zap.Error(err),
			)
		}
	}
}
