package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"lactacare/internal/alerts"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var extraction = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func TestContainerRegistry_Register(t *testing.T) {
	h := newHarness(t, extraction, nil)

	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC), c.ExpiresAt)
	assert.Equal(t, domain.ContainerStored, c.State)

	stored, err := h.containers.Get(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ExpiresAt, stored.ExpiresAt)
	assert.Equal(t, []string{"ContainerRegistered"}, h.recorder.Types())
}

func TestContainerRegistry_Register_Error_InvalidVolume(t *testing.T) {
	h := newHarness(t, extraction, nil)

	_, err := h.containers.Register(h.ctx, 0, domain.Refrigerated, "patient-1", extraction)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, h.recorder.Events())
}

func TestContainerRegistry_NearExpiryRaisedOnce(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	report := h.containers.Tick(h.ctx, time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{c.ID}, report.NearExpiry)

	report = h.containers.Tick(h.ctx, time.Date(2024, 1, 4, 8, 1, 0, 0, time.UTC))
	assert.Empty(t, report.NearExpiry)

	nearExpiry := h.alerts.List(alerts.ByKind(domain.AlertNearExpiry))
	require.Len(t, nearExpiry, 1)
	assert.Equal(t, c.ID, nearExpiry[0].SubjectID)
	assert.Len(t, h.eventsOfType("ContainerNearExpiry"), 1)
}

func TestContainerRegistry_NearExpiryOutsideWindow(t *testing.T) {
	h := newHarness(t, extraction, nil)
	_, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	report := h.containers.Tick(h.ctx, time.Date(2024, 1, 4, 7, 59, 0, 0, time.UTC))

	assert.Empty(t, report.NearExpiry)
	assert.Equal(t, 0, h.alerts.UnreadCount())
}

func TestContainerRegistry_NearExpiryAfterRead(t *testing.T) {
	h := newHarness(t, extraction, nil)
	_, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	h.containers.Tick(h.ctx, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC))
	h.alerts.MarkAllRead(h.ctx)
	h.containers.Tick(h.ctx, time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC))

	assert.Len(t, h.alerts.List(alerts.ByKind(domain.AlertNearExpiry)), 2)
	assert.Equal(t, 1, h.alerts.UnreadCount())
}

func TestContainerRegistry_ExpiresStoredContainer(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	report := h.containers.Tick(h.ctx, c.ExpiresAt)

	assert.Equal(t, []string{c.ID}, report.Expired)
	stored, err := h.containers.Get(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerExpired, stored.State)
	assert.Len(t, h.alerts.List(alerts.ByKind(domain.AlertContainerExpired)), 1)
}

func TestContainerRegistry_FlagCancelRoundTrip(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Frozen, "patient-1", extraction)
	require.NoError(t, err)

	h.clk.Advance(time.Hour)
	flagged, err := h.containers.FlagForPickup(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerFlaggedForPickup, flagged.State)
	require.NotNil(t, flagged.FlaggedAt)
	assert.Equal(t, h.clk.Now(), *flagged.FlaggedAt)

	restored, err := h.containers.CancelFlag(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStored, restored.State)
	assert.Nil(t, restored.FlaggedAt)
	assert.Equal(t, c.ExpiresAt, restored.ExpiresAt)
	assert.Equal(t, c.StorageMode, restored.StorageMode)

	assert.Equal(t, []string{"ContainerRegistered", "ContainerFlagged", "ContainerFlagCancelled"}, h.recorder.Types())
	assert.Equal(t, 0, h.alerts.UnreadCount())
}

func TestContainerRegistry_FlagTwice_Error_InvalidTransition(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	_, err = h.containers.FlagForPickup(h.ctx, c.ID)
	require.NoError(t, err)
	_, err = h.containers.FlagForPickup(h.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.containers.CancelFlag(h.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContainerRegistry_AutoWithdrawAfterPickupWindow(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	flagTime := extraction.Add(2 * time.Hour)
	h.clk.Set(flagTime)
	_, err = h.containers.FlagForPickup(h.ctx, c.ID)
	require.NoError(t, err)

	report := h.containers.Tick(h.ctx, flagTime.Add(24*time.Hour+time.Second))

	assert.Equal(t, []string{c.ID}, report.Withdrawn)
	stored, err := h.containers.Get(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerWithdrawn, stored.State)

	_, err = h.containers.CancelFlag(h.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Len(t, h.alerts.List(alerts.ByKind(domain.AlertContainerWithdrawn)), 1)
	assert.Empty(t, h.alerts.List(alerts.ByKind(domain.AlertPickupOverdue)))
	withdrawn := h.eventsOfType("ContainerWithdrawn")
	require.Len(t, withdrawn, 1)
	assert.True(t, withdrawn[0].(events.ContainerWithdrawnEvent).Automatic)
}

func TestContainerRegistry_PickupWindowBoundary(t *testing.T) {
	testCases := []struct {
		name      string
		elapsed   time.Duration
		withdrawn bool
	}{
		{"23h59m", 23*time.Hour + 59*time.Minute, false},
		{"exactly 24h", 24 * time.Hour, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, extraction, nil)
			c, err := h.containers.Register(h.ctx, 120, domain.Frozen, "patient-1", extraction)
			require.NoError(t, err)
			_, err = h.containers.FlagForPickup(h.ctx, c.ID)
			require.NoError(t, err)

			h.containers.Tick(h.ctx, extraction.Add(tc.elapsed))

			stored, err := h.containers.Get(h.ctx, c.ID)
			require.NoError(t, err)
			if tc.withdrawn {
				assert.Equal(t, domain.ContainerWithdrawn, stored.State)
			} else {
				assert.Equal(t, domain.ContainerFlaggedForPickup, stored.State)
			}
		})
	}
}

func TestContainerRegistry_FlaggedContainerIgnoresExpiry(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	// expires 2024-01-06 08:00, flagged one day before
	flagTime := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	h.clk.Set(flagTime)
	_, err = h.containers.FlagForPickup(h.ctx, c.ID)
	require.NoError(t, err)

	report := h.containers.Tick(h.ctx, time.Date(2024, 1, 6, 8, 30, 0, 0, time.UTC))
	assert.Empty(t, report.Expired)
	assert.Equal(t, []string{c.ID}, report.PickupOverdue)

	report = h.containers.Tick(h.ctx, time.Date(2024, 1, 6, 8, 31, 0, 0, time.UTC))
	assert.Empty(t, report.PickupOverdue)

	report = h.containers.Tick(h.ctx, flagTime.Add(24*time.Hour))
	assert.Equal(t, []string{c.ID}, report.Withdrawn)
	assert.Empty(t, report.Expired)

	stored, err := h.containers.Get(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerWithdrawn, stored.State)
	assert.Len(t, h.alerts.List(alerts.ByKind(domain.AlertPickupOverdue)), 1)
}

func TestContainerRegistry_TerminalStatesAreStable(t *testing.T) {
	h := newHarness(t, extraction, nil)
	expiring, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)
	withdrawing, err := h.containers.Register(h.ctx, 60, domain.Refrigerated, "patient-2", extraction)
	require.NoError(t, err)
	_, err = h.containers.FlagForPickup(h.ctx, withdrawing.ID)
	require.NoError(t, err)

	h.containers.Tick(h.ctx, expiring.ExpiresAt)
	before := len(h.recorder.Events())

	for i := 1; i <= 5; i++ {
		report := h.containers.Tick(h.ctx, expiring.ExpiresAt.AddDate(0, i, 0))
		assert.Zero(t, report.Evaluated)
	}

	e, err := h.containers.Get(h.ctx, expiring.ID)
	require.NoError(t, err)
	w, err := h.containers.Get(h.ctx, withdrawing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerExpired, e.State)
	assert.Equal(t, domain.ContainerWithdrawn, w.State)
	assert.Len(t, h.recorder.Events(), before)
}

func TestContainerRegistry_TickIsolatesMalformedContainer(t *testing.T) {
	repo := repository.NewContainerRepository()
	h := newHarness(t, extraction, repo)

	broken := &domain.Container{
		ID:             "broken",
		VolumeMl:       10,
		ExtractedAt:    extraction,
		ExpiresAt:      extraction.Add(time.Hour),
		StorageMode:    domain.Refrigerated,
		State:          domain.ContainerFlaggedForPickup,
		OwnerPatientID: "p",
		CreatedAt:      extraction.Add(-time.Hour),
		Version:        1,
	}
	require.NoError(t, repo.Create(h.ctx, broken))
	good, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	report := h.containers.Tick(h.ctx, good.ExpiresAt)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "broken", report.Failures[0].EntityID)
	assert.Equal(t, []string{good.ID}, report.Expired)
	assert.Equal(t, 2, report.Evaluated)

	last, ok := h.containers.LastReport()
	require.True(t, ok)
	assert.Equal(t, report.Expired, last.Expired)
}

func TestContainerRegistry_TickEventOrderIsStable(t *testing.T) {
	h := newHarness(t, extraction, nil)
	var ids []string
	for i := 0; i < 3; i++ {
		c, err := h.containers.Register(h.ctx, 50, domain.Refrigerated, "patient-1", extraction)
		require.NoError(t, err)
		ids = append(ids, c.ID)
		h.clk.Advance(time.Second)
	}
	h.recorder.Reset()

	h.containers.Tick(h.ctx, extraction.AddDate(0, 0, 5))

	expired := h.eventsOfType("ContainerExpired")
	require.Len(t, expired, 3)
	for i, e := range expired {
		assert.Equal(t, ids[i], e.PartitionKey())
	}
	raised := h.alerts.List(alerts.All())
	require.Len(t, raised, 3)
	assert.Equal(t, ids[2], raised[0].SubjectID)
	assert.Equal(t, ids[0], raised[2].SubjectID)
}

func TestContainerRegistry_Delete(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)
	h.containers.Tick(h.ctx, c.ExpiresAt)

	require.NoError(t, h.containers.Delete(h.ctx, c.ID))

	_, err = h.containers.Get(h.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, h.containers.Delete(h.ctx, c.ID), domain.ErrNotFound)
	deleted := h.eventsOfType("ContainerDeleted")
	require.Len(t, deleted, 1)
	assert.Equal(t, "expired", deleted[0].(events.ContainerDeletedEvent).PreviousState)
}

func TestContainerRegistry_ConfirmPickup(t *testing.T) {
	h := newHarness(t, extraction, nil)
	c, err := h.containers.Register(h.ctx, 120, domain.Refrigerated, "patient-1", extraction)
	require.NoError(t, err)

	_, err = h.containers.ConfirmPickup(h.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.containers.FlagForPickup(h.ctx, c.ID)
	require.NoError(t, err)
	withdrawn, err := h.containers.ConfirmPickup(h.ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ContainerWithdrawn, withdrawn.State)
	assert.NotNil(t, withdrawn.WithdrawnAt)
	// manual confirmation is not an alert
	assert.Equal(t, 0, h.alerts.UnreadCount())
}

// racingRepository applies a concurrent cancelFlag just before the first
// update of a flagged container reaches the store
type racingRepository struct {
	*repository.InMemoryContainerRepository
	once sync.Once
}

func (r *racingRepository) Update(ctx context.Context, c *domain.Container) error {
	r.once.Do(func() {
		other, err := r.InMemoryContainerRepository.FindByID(ctx, c.ID)
		if err != nil {
			return
		}
		if other.CancelFlag(other.UpdatedAt) == nil {
			_ = r.InMemoryContainerRepository.Update(ctx, other)
		}
	})
	return r.InMemoryContainerRepository.Update(ctx, c)
}

func TestContainerRegistry_TickRetriesOnVersionConflict(t *testing.T) {
	base := repository.NewContainerRepository()
	h := newHarness(t, extraction, base)
	c, err := h.containers.Register(h.ctx, 120, domain.Frozen, "patient-1", extraction)
	require.NoError(t, err)
	_, err = h.containers.FlagForPickup(h.ctx, c.ID)
	require.NoError(t, err)

	racing := &racingRepository{InMemoryContainerRepository: base}
	h.containers.repo = racing

	report := h.containers.Tick(h.ctx, extraction.Add(25*time.Hour))

	assert.Empty(t, report.Withdrawn)
	assert.Empty(t, report.Failures)
	stored, err := base.FindByID(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStored, stored.State)
	assert.Nil(t, stored.FlaggedAt)
}

func TestContainerRegistry_UnreadCountMatchesListing(t *testing.T) {
	h := newHarness(t, extraction, nil)
	for i := 0; i < 4; i++ {
		_, err := h.containers.Register(h.ctx, 100, domain.Refrigerated, "patient-1", extraction.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	for hours := 60; hours <= 130; hours += 5 {
		h.containers.Tick(h.ctx, extraction.Add(time.Duration(hours)*time.Hour))
		if hours == 90 {
			all := h.alerts.List(alerts.All())
			h.alerts.MarkRead(h.ctx, all[len(all)-1].ID)
		}
		assert.Equal(t, len(h.alerts.List(alerts.UnreadOnly())), h.alerts.UnreadCount())
	}
}
