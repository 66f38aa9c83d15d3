package repository

import (
	"context"
	"time"

	"lactacare/internal/domain"
)

// ContainerRepository persists containers. Update is an optimistic write: it
// succeeds only if the stored version equals c.Version, and then bumps c.Version.
type ContainerRepository interface {
	Create(ctx context.Context, c *domain.Container) error
	Update(ctx context.Context, c *domain.Container) error
	FindByID(ctx context.Context, id string) (*domain.Container, error)
	// ActiveIDs returns the ids of non-terminal containers ordered by creation
	// time, then id. Only ids are read so one undecodable row cannot hide the rest.
	ActiveIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context, filter ContainerFilter) ([]*domain.Container, error)
	Delete(ctx context.Context, id string) error
}

// ContainerFilter narrows container listings; zero values match everything
type ContainerFilter struct {
	OwnerPatientID string
	State          domain.ContainerState
}

// Matches reports whether c passes the filter
func (f ContainerFilter) Matches(c *domain.Container) bool {
	if f.OwnerPatientID != "" && c.OwnerPatientID != f.OwnerPatientID {
		return false
	}
	if f.State != "" && c.State != f.State {
		return false
	}
	return true
}

// ReservationRepository persists reservations with the same optimistic Update contract
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	Update(ctx context.Context, r *domain.Reservation) error
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	// ListByRoomAndDate returns every reservation of the room on that date, any state
	ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]*domain.Reservation, error)
}

// ReservationFilter narrows reservation listings; zero values match everything
type ReservationFilter struct {
	PatientID string
	RoomID    string
	Date      *time.Time
	State     domain.ReservationState
}

// Matches reports whether r passes the filter
func (f ReservationFilter) Matches(r *domain.Reservation) bool {
	if f.PatientID != "" && r.PatientID != f.PatientID {
		return false
	}
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.Date != nil && !r.Date.Equal(domain.DateOf(*f.Date)) {
		return false
	}
	if f.State != "" && r.State != f.State {
		return false
	}
	return true
}

// ReadingRepository stores temperature readings; Append assigns the reading id
type ReadingRepository interface {
	Append(ctx context.Context, r *domain.TemperatureReading) error
	// Latest returns the reading with the greatest ObservedAt for the unit, or nil
	Latest(ctx context.Context, unitID string) (*domain.TemperatureReading, error)
	// History returns up to limit readings for the unit, newest first
	History(ctx context.Context, unitID string, limit int) ([]domain.TemperatureReading, error)
	Units(ctx context.Context) ([]string, error)
}

// AlertStore persists alert records for the dispatcher
type AlertStore interface {
	Save(ctx context.Context, a domain.AlertRecord) error
	MarkRead(ctx context.Context, ids []int64, at time.Time) error
	// LoadAll returns every alert ordered by id ascending
	LoadAll(ctx context.Context) ([]domain.AlertRecord, error)
}

// RoomDirectory resolves room capacities; it is owned by an external collaborator
type RoomDirectory interface {
	Room(ctx context.Context, roomID string) (domain.Room, error)
	Rooms(ctx context.Context) ([]domain.Room, error)
}
