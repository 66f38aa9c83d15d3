package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReservationState is the lifecycle state of a room reservation
type ReservationState string

const (
	ReservationPending   ReservationState = "pending"
	ReservationConfirmed ReservationState = "confirmed"
	ReservationCancelled ReservationState = "cancelled"
	ReservationCompleted ReservationState = "completed"
)

const DateLayout = "2006-01-02"

// ClockTime is a time of day in minutes after midnight
type ClockTime int

// EndOfDay is midnight at the end of the day, the latest a slot may end
const EndOfDay ClockTime = 24 * 60

// ParseClockTime parses "HH:MM". "24:00" is accepted as EndOfDay.
func ParseClockTime(s string) (ClockTime, error) {
	if s == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, NewInvalidInput("invalid time of day %q, expected HH:MM", s)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseDate parses a calendar date (YYYY-MM-DD) as midnight UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewInvalidInput("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DateOf truncates t to its calendar date in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Room is the capacity view of a lactation room
type Room struct {
	ID       string `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Capacity int    `json:"capacity" mapstructure:"capacity"`
}

// Reservation represents a booking of a room's capacity for a time slot
type Reservation struct {
	ID        string
	PatientID string
	RoomID    string
	Date      time.Time // midnight UTC
	StartTime ClockTime
	EndTime   ClockTime
	State     ReservationState
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // For optimistic locking
}

// NewReservation validates the slot and creates a pending reservation
func NewReservation(patientID, roomID string, date time.Time, start, end ClockTime, now time.Time) (*Reservation, error) {
	if patientID == "" {
		return nil, NewInvalidInput("patient id is required")
	}
	if roomID == "" {
		return nil, NewInvalidInput("room id is required")
	}
	if start < 0 || end > EndOfDay {
		return nil, NewInvalidInput("slot %s-%s is outside the day", start, end)
	}
	if start >= end {
		return nil, NewInvalidInput("start %s must be before end %s", start, end)
	}
	day := DateOf(date)
	if day.Before(DateOf(now)) {
		return nil, NewInvalidInput("date %s is in the past", day.Format(DateLayout))
	}

	return &Reservation{
		ID:        uuid.New().String(),
		PatientID: patientID,
		RoomID:    roomID,
		Date:      day,
		StartTime: start,
		EndTime:   end,
		State:     ReservationPending,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Version:   1,
	}, nil
}

// IsActive reports whether the reservation holds room capacity
func (r *Reservation) IsActive() bool {
	return r.State == ReservationPending || r.State == ReservationConfirmed
}

// IsTerminal reports whether the reservation can no longer change
func (r *Reservation) IsTerminal() bool {
	return r.State == ReservationCancelled || r.State == ReservationCompleted
}

// Overlaps uses half-open intervals on the same room and date
func (r *Reservation) Overlaps(roomID string, date time.Time, start, end ClockTime) bool {
	if r.RoomID != roomID || !r.Date.Equal(DateOf(date)) {
		return false
	}
	return r.StartTime < end && start < r.EndTime
}

// Confirm confirms a pending reservation
func (r *Reservation) Confirm(now time.Time) error {
	if r.State != ReservationPending {
		return NewInvalidTransition("reservation %s cannot be confirmed from state %s", r.ID, r.State)
	}
	r.State = ReservationConfirmed
	r.UpdatedAt = now.UTC()
	return nil
}

// Cancel releases the reservation's capacity
func (r *Reservation) Cancel(now time.Time) error {
	if !r.IsActive() {
		return NewInvalidTransition("reservation %s cannot be cancelled from state %s", r.ID, r.State)
	}
	r.State = ReservationCancelled
	r.UpdatedAt = now.UTC()
	return nil
}

// Complete records that the attention took place
func (r *Reservation) Complete(now time.Time) error {
	if r.State != ReservationConfirmed {
		return NewInvalidTransition("reservation %s cannot be completed from state %s", r.ID, r.State)
	}
	r.State = ReservationCompleted
	r.UpdatedAt = now.UTC()
	return nil
}

// SlotKey identifies the room/date pair, used as alert subject for capacity alerts
func (r *Reservation) SlotKey() string {
	return r.RoomID + "/" + r.Date.Format(DateLayout)
}

// Clone returns a copy
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
