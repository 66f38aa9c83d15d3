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

// ContainerRegistry owns the container state machine. All mutations, manual
// or scheduled, go through one lock and an optimistic versioned write.
type ContainerRegistry struct {
	mu         sync.Mutex
	repo       repository.ContainerRepository
	publisher  events.EventPublisher
	rules      domain.Rules
	maxRetries int
	clock      clock.Clock
	pending    PendingAlerts
	metrics    *metrics.Metrics
	logger     *zap.Logger

	reportMu   sync.RWMutex
	lastReport *TickReport
}

func NewContainerRegistry(repo repository.ContainerRepository, publisher events.EventPublisher, logger *zap.Logger, opts Options) *ContainerRegistry {
	opts = opts.withDefaults()
	return &ContainerRegistry{
		repo:       repo,
		publisher:  publisher,
		rules:      opts.Rules,
		maxRetries: opts.MaxRetries,
		clock:      opts.Clock,
		pending:    opts.Alerts,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Register stores a new container with its expiry derived from the storage mode
func (r *ContainerRegistry) Register(ctx context.Context, volumeMl float64, mode domain.StorageMode, ownerPatientID string, extractedAt time.Time) (*domain.Container, error) {
	c, err := domain.NewContainer(volumeMl, mode, ownerPatientID, extractedAt, r.clock.Now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	err = r.repo.Create(ctx, c)
	r.mu.Unlock()
	if err != nil {
		r.logger.Error("Failed to save container", zap.Error(err))
		return nil, fmt.Errorf("failed to save container: %w", err)
	}

	r.logger.Info("Container registered",
		zap.String("container_id", c.ID),
		zap.String("storage_mode", string(c.StorageMode)),
		zap.Time("expires_at", c.ExpiresAt),
	)
	r.metrics.Transition("container", string(c.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ContainerRegisteredEvent{
		ContainerID:    c.ID,
		OwnerPatientID: c.OwnerPatientID,
		StorageMode:    string(c.StorageMode),
		VolumeMl:       c.VolumeMl,
		ExtractedAt:    c.ExtractedAt,
		ExpiresAt:      c.ExpiresAt,
		OccurredAt:     c.CreatedAt,
	}})
	return c, nil
}

// FlagForPickup starts the pickup window of a stored container
func (r *ContainerRegistry) FlagForPickup(ctx context.Context, id string) (*domain.Container, error) {
	now := r.clock.Now()
	c, err := r.mutate(ctx, id, func(c *domain.Container) error {
		return c.FlagForPickup(now)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Container flagged for pickup", zap.String("container_id", id))
	r.metrics.Transition("container", string(c.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ContainerFlaggedEvent{
		ContainerID:    c.ID,
		OwnerPatientID: c.OwnerPatientID,
		FlaggedAt:      *c.FlaggedAt,
		OccurredAt:     now,
	}})
	return c, nil
}

// CancelFlag returns a flagged container to storage
func (r *ContainerRegistry) CancelFlag(ctx context.Context, id string) (*domain.Container, error) {
	now := r.clock.Now()
	c, err := r.mutate(ctx, id, func(c *domain.Container) error {
		return c.CancelFlag(now)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Container pickup flag cancelled", zap.String("container_id", id))
	r.metrics.Transition("container", string(c.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ContainerFlagCancelledEvent{
		ContainerID: c.ID,
		OccurredAt:  now,
	}})
	return c, nil
}

// ConfirmPickup records the physical retrieval before the pickup window elapses
func (r *ContainerRegistry) ConfirmPickup(ctx context.Context, id string) (*domain.Container, error) {
	now := r.clock.Now()
	var flaggedAt time.Time
	c, err := r.mutate(ctx, id, func(c *domain.Container) error {
		if c.FlaggedAt != nil {
			flaggedAt = *c.FlaggedAt
		}
		return c.Withdraw(now)
	})
	if err != nil {
		return nil, err
	}
	r.withdrawn(ctx, c, flaggedAt, "", now)
	return c, nil
}

// withdrawn reports a manual withdrawal, optionally tagged with the reservation it served
func (r *ContainerRegistry) withdrawn(ctx context.Context, c *domain.Container, flaggedAt time.Time, reservationID string, now time.Time) {
	r.logger.Info("Container pickup confirmed",
		zap.String("container_id", c.ID),
		zap.String("reservation_id", reservationID),
	)
	r.metrics.Transition("container", string(c.State))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ContainerWithdrawnEvent{
		ContainerID:    c.ID,
		OwnerPatientID: c.OwnerPatientID,
		FlaggedAt:      flaggedAt,
		Automatic:      false,
		ReservationID:  reservationID,
		OccurredAt:     now,
	}})
}

// Delete removes a container in any state; the scheduler never calls it
func (r *ContainerRegistry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	c, err := r.repo.FindByID(ctx, id)
	if err == nil {
		err = r.repo.Delete(ctx, id)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.logger.Info("Container deleted", zap.String("container_id", id), zap.String("state", string(c.State)))
	publishAll(ctx, r.publisher, r.logger, []events.Event{events.ContainerDeletedEvent{
		ContainerID:   id,
		PreviousState: string(c.State),
		OccurredAt:    r.clock.Now(),
	}})
	return nil
}

// Get returns a snapshot of one container
func (r *ContainerRegistry) Get(ctx context.Context, id string) (*domain.Container, error) {
	return r.repo.FindByID(ctx, id)
}

// List returns snapshots matching the filter, oldest first
func (r *ContainerRegistry) List(ctx context.Context, filter repository.ContainerFilter) ([]*domain.Container, error) {
	return r.repo.List(ctx, filter)
}

// Tick re-evaluates every non-terminal container at now. Each container is
// handled on its own: a failure is recorded in the report and the pass goes on.
func (r *ContainerRegistry) Tick(ctx context.Context, now time.Time) TickReport {
	started := time.Now()
	report := newTickReport(now)

	active, err := r.repo.ActiveIDs(ctx)
	if err != nil {
		r.logger.Error("Failed to list active containers", zap.Error(err))
		report.Failures = append(report.Failures, TickFailure{Error: err.Error()})
		r.finishTick(&report, started)
		return report
	}

	for _, id := range active {
		if ctx.Err() != nil {
			break
		}
		report.Evaluated++

		decision, event, err := r.evaluate(ctx, id, now)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// deleted after the listing
				continue
			}
			r.logger.Warn("Container evaluation failed",
				zap.String("container_id", id),
				zap.Error(err),
			)
			r.metrics.TickFailure("containers")
			report.Failures = append(report.Failures, TickFailure{EntityID: id, Error: err.Error()})
			continue
		}

		switch decision {
		case domain.DecisionExpire:
			report.Expired = append(report.Expired, id)
		case domain.DecisionWithdraw:
			report.Withdrawn = append(report.Withdrawn, id)
		case domain.DecisionNearExpiry:
			report.NearExpiry = append(report.NearExpiry, id)
		case domain.DecisionPickupOverdue:
			report.PickupOverdue = append(report.PickupOverdue, id)
		}
		if event != nil {
			publishAll(ctx, r.publisher, r.logger, []events.Event{event})
		}
	}

	r.finishTick(&report, started)
	return report
}

// evaluate applies the decision for one container atomically. Notifications
// that are still unread are reported as DecisionNone.
func (r *ContainerRegistry) evaluate(ctx context.Context, id string, now time.Time) (domain.Decision, events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; ; attempt++ {
		c, err := r.repo.FindByID(ctx, id)
		if err != nil {
			return domain.DecisionNone, nil, err
		}

		decision, err := c.Evaluate(now, r.rules)
		if err != nil {
			return domain.DecisionNone, nil, err
		}

		var event events.Event
		switch decision {
		case domain.DecisionNone:
			return decision, nil, nil

		case domain.DecisionNearExpiry:
			if r.isPending(domain.AlertNearExpiry, c.ID) {
				return domain.DecisionNone, nil, nil
			}
			return decision, events.ContainerNearExpiryEvent{
				ContainerID:    c.ID,
				OwnerPatientID: c.OwnerPatientID,
				ExpiresAt:      c.ExpiresAt,
				Remaining:      c.ExpiresAt.Sub(now),
				OccurredAt:     now,
			}, nil

		case domain.DecisionPickupOverdue:
			if r.isPending(domain.AlertPickupOverdue, c.ID) {
				return domain.DecisionNone, nil, nil
			}
			return decision, events.ContainerPickupOverdueEvent{
				ContainerID: c.ID,
				ExpiresAt:   c.ExpiresAt,
				FlaggedAt:   *c.FlaggedAt,
				OccurredAt:  now,
			}, nil

		case domain.DecisionExpire:
			if err := c.Expire(now); err != nil {
				return domain.DecisionNone, nil, err
			}
			event = events.ContainerExpiredEvent{
				ContainerID:    c.ID,
				OwnerPatientID: c.OwnerPatientID,
				ExpiresAt:      c.ExpiresAt,
				OccurredAt:     now,
			}

		case domain.DecisionWithdraw:
			flaggedAt := *c.FlaggedAt
			if err := c.Withdraw(now); err != nil {
				return domain.DecisionNone, nil, err
			}
			event = events.ContainerWithdrawnEvent{
				ContainerID:    c.ID,
				OwnerPatientID: c.OwnerPatientID,
				FlaggedAt:      flaggedAt,
				Automatic:      true,
				OccurredAt:     now,
			}
		}

		err = r.repo.Update(ctx, c)
		if err == nil {
			r.metrics.Transition("container", string(c.State))
			r.logger.Info("Container transitioned by tick",
				zap.String("container_id", c.ID),
				zap.String("state", string(c.State)),
			)
			return decision, event, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= r.maxRetries {
			return domain.DecisionNone, nil, err
		}
		r.metrics.VersionConflict("container")
		r.logger.Debug("Version conflict, re-evaluating container",
			zap.String("container_id", id),
			zap.Int("attempt", attempt),
		)
	}
}

func (r *ContainerRegistry) isPending(kind domain.AlertKind, id string) bool {
	return r.pending != nil && r.pending.HasPending(kind, id)
}

// mutate loads, applies and writes a container, retrying on version conflicts
func (r *ContainerRegistry) mutate(ctx context.Context, id string, apply func(c *domain.Container) error) (*domain.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; ; attempt++ {
		c, err := r.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := apply(c); err != nil {
			return nil, err
		}
		err = r.repo.Update(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= r.maxRetries {
			return nil, err
		}
		r.metrics.VersionConflict("container")
		r.logger.Debug("Version conflict, retrying container update",
			zap.String("container_id", id),
			zap.Int("attempt", attempt),
		)
	}
}

func (r *ContainerRegistry) finishTick(report *TickReport, started time.Time) {
	report.Duration = time.Since(started)
	r.metrics.ObserveTick("containers", report.Duration)

	cp := *report
	r.reportMu.Lock()
	r.lastReport = &cp
	r.reportMu.Unlock()

	r.logger.Debug("Container tick finished",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("expired", len(report.Expired)),
		zap.Int("withdrawn", len(report.Withdrawn)),
		zap.Int("near_expiry", len(report.NearExpiry)),
		zap.Int("pickup_overdue", len(report.PickupOverdue)),
		zap.Int("failures", len(report.Failures)),
	)
}

// LastReport returns the most recent tick report, if any
func (r *ContainerRegistry) LastReport() (TickReport, bool) {
	r.reportMu.RLock()
	defer r.reportMu.RUnlock()
	if r.lastReport == nil {
		return TickReport{}, false
	}
	return *r.lastReport, true
}
