package alerts

import (
	"context"
	"fmt"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/events"
)

// Handle turns registry and monitor events into alerts; it is subscribed to the event bus.
// Events that do not produce alerts are ignored.
func (d *Dispatcher) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ContainerNearExpiryEvent:
		d.RaiseOnce(ctx, domain.AlertNearExpiry, e.ContainerID,
			fmt.Sprintf("Container %s expires at %s (%s left)",
				e.ContainerID, e.ExpiresAt.Format("2006-01-02 15:04"), e.Remaining.Round(time.Minute)))

	case events.ContainerPickupOverdueEvent:
		d.RaiseOnce(ctx, domain.AlertPickupOverdue, e.ContainerID,
			fmt.Sprintf("Container %s passed its expiry while waiting for pickup", e.ContainerID))

	case events.ContainerWithdrawnEvent:
		if !e.Automatic {
			return nil
		}
		d.Raise(ctx, domain.AlertContainerWithdrawn, e.ContainerID,
			fmt.Sprintf("Container %s marked withdrawn after the pickup window", e.ContainerID))

	case events.ContainerExpiredEvent:
		d.Raise(ctx, domain.AlertContainerExpired, e.ContainerID,
			fmt.Sprintf("Container %s expired", e.ContainerID))

	case events.TemperatureExcursionEvent:
		d.Raise(ctx, domain.AlertTemperatureExcursion, e.UnitID,
			fmt.Sprintf("Unit %s is %s: %.1f°C", e.UnitID, statusLabel(e.Status), e.TemperatureC))

	case events.ReservationCreatedEvent:
		if e.Capacity > 0 && e.ActiveInSlot >= e.Capacity {
			d.Raise(ctx, domain.AlertCapacityReached, e.SlotKey,
				fmt.Sprintf("Room %s is full on %s %s-%s", e.RoomID, e.Date, e.StartTime, e.EndTime))
		}
	}
	return nil
}

func statusLabel(status string) string {
	switch domain.ThermalStatus(status) {
	case domain.ThermalTooWarm:
		return "too warm"
	case domain.ThermalTooCold:
		return "too cold"
	default:
		return status
	}
}
