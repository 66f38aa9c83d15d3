package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a typed domain event emitted by the registries and the monitor
type Event interface {
	EventType() string
	// PartitionKey is the aggregate the event belongs to
	PartitionKey() string
}

// Container events
type ContainerRegisteredEvent struct {
	ContainerID    string    `json:"container_id"`
	OwnerPatientID string    `json:"owner_patient_id"`
	StorageMode    string    `json:"storage_mode"`
	VolumeMl       float64   `json:"volume_ml"`
	ExtractedAt    time.Time `json:"extracted_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type ContainerFlaggedEvent struct {
	ContainerID    string    `json:"container_id"`
	OwnerPatientID string    `json:"owner_patient_id"`
	FlaggedAt      time.Time `json:"flagged_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type ContainerFlagCancelledEvent struct {
	ContainerID string    `json:"container_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type ContainerNearExpiryEvent struct {
	ContainerID    string        `json:"container_id"`
	OwnerPatientID string        `json:"owner_patient_id"`
	ExpiresAt      time.Time     `json:"expires_at"`
	Remaining      time.Duration `json:"remaining"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

type ContainerPickupOverdueEvent struct {
	ContainerID string    `json:"container_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	FlaggedAt   time.Time `json:"flagged_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type ContainerExpiredEvent struct {
	ContainerID    string    `json:"container_id"`
	OwnerPatientID string    `json:"owner_patient_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type ContainerWithdrawnEvent struct {
	ContainerID    string    `json:"container_id"`
	OwnerPatientID string    `json:"owner_patient_id"`
	FlaggedAt      time.Time `json:"flagged_at"`
	Automatic      bool      `json:"automatic"`
	ReservationID  string    `json:"reservation_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type ContainerDeletedEvent struct {
	ContainerID   string    `json:"container_id"`
	PreviousState string    `json:"previous_state"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Reservation events
type ReservationCreatedEvent struct {
	ReservationID string    `json:"reservation_id"`
	PatientID     string    `json:"patient_id"`
	RoomID        string    `json:"room_id"`
	Date          string    `json:"date"`
	SlotKey       string    `json:"slot_key"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	ActiveInSlot  int       `json:"active_in_slot"`
	Capacity      int       `json:"capacity"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ReservationRejectedEvent struct {
	PatientID  string    `json:"patient_id"`
	RoomID     string    `json:"room_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ReservationConfirmedEvent struct {
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ReservationCancelledEvent struct {
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	PreviousState string    `json:"previous_state"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ReservationCompletedEvent struct {
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	ContainerIDs  []string  `json:"container_ids,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Monitoring events
type ReadingRecordedEvent struct {
	UnitID       string    `json:"unit_id"`
	ReadingID    int64     `json:"reading_id"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	Thermal      string    `json:"thermal"`
	Humidity     string    `json:"humidity"`
	Latest       bool      `json:"latest"`
	ObservedAt   time.Time `json:"observed_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type TemperatureExcursionEvent struct {
	UnitID       string    `json:"unit_id"`
	ReadingID    int64     `json:"reading_id"`
	TemperatureC float64   `json:"temperature_c"`
	Status       string    `json:"status"`
	ObservedAt   time.Time `json:"observed_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type TemperatureRecoveredEvent struct {
	UnitID       string    `json:"unit_id"`
	ReadingID    int64     `json:"reading_id"`
	TemperatureC float64   `json:"temperature_c"`
	ObservedAt   time.Time `json:"observed_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (ContainerRegisteredEvent) EventType() string    { return "ContainerRegistered" }
func (ContainerFlaggedEvent) EventType() string       { return "ContainerFlagged" }
func (ContainerFlagCancelledEvent) EventType() string { return "ContainerFlagCancelled" }
func (ContainerNearExpiryEvent) EventType() string    { return "ContainerNearExpiry" }
func (ContainerPickupOverdueEvent) EventType() string { return "ContainerPickupOverdue" }
func (ContainerExpiredEvent) EventType() string       { return "ContainerExpired" }
func (ContainerWithdrawnEvent) EventType() string     { return "ContainerWithdrawn" }
func (ContainerDeletedEvent) EventType() string       { return "ContainerDeleted" }
func (ReservationCreatedEvent) EventType() string     { return "ReservationCreated" }
func (ReservationRejectedEvent) EventType() string    { return "ReservationRejected" }
func (ReservationConfirmedEvent) EventType() string   { return "ReservationConfirmed" }
func (ReservationCancelledEvent) EventType() string   { return "ReservationCancelled" }
func (ReservationCompletedEvent) EventType() string   { return "ReservationCompleted" }
func (ReadingRecordedEvent) EventType() string        { return "ReadingRecorded" }
func (TemperatureExcursionEvent) EventType() string   { return "TemperatureExcursion" }
func (TemperatureRecoveredEvent) EventType() string   { return "TemperatureRecovered" }

func (e ContainerRegisteredEvent) PartitionKey() string    { return e.ContainerID }
func (e ContainerFlaggedEvent) PartitionKey() string       { return e.ContainerID }
func (e ContainerFlagCancelledEvent) PartitionKey() string { return e.ContainerID }
func (e ContainerNearExpiryEvent) PartitionKey() string    { return e.ContainerID }
func (e ContainerPickupOverdueEvent) PartitionKey() string { return e.ContainerID }
func (e ContainerExpiredEvent) PartitionKey() string       { return e.ContainerID }
func (e ContainerWithdrawnEvent) PartitionKey() string     { return e.ContainerID }
func (e ContainerDeletedEvent) PartitionKey() string       { return e.ContainerID }
func (e ReservationCreatedEvent) PartitionKey() string     { return e.RoomID }
func (e ReservationRejectedEvent) PartitionKey() string    { return e.RoomID }
func (e ReservationConfirmedEvent) PartitionKey() string   { return e.RoomID }
func (e ReservationCancelledEvent) PartitionKey() string   { return e.RoomID }
func (e ReservationCompletedEvent) PartitionKey() string   { return e.RoomID }
func (e ReadingRecordedEvent) PartitionKey() string        { return e.UnitID }
func (e TemperatureExcursionEvent) PartitionKey() string   { return e.UnitID }
func (e TemperatureRecoveredEvent) PartitionKey() string   { return e.UnitID }

var factories = map[string]func() Event{
	"ContainerRegistered":    func() Event { return &ContainerRegisteredEvent{} },
	"ContainerFlagged":       func() Event { return &ContainerFlaggedEvent{} },
	"ContainerFlagCancelled": func() Event { return &ContainerFlagCancelledEvent{} },
	"ContainerNearExpiry":    func() Event { return &ContainerNearExpiryEvent{} },
	"ContainerPickupOverdue": func() Event { return &ContainerPickupOverdueEvent{} },
	"ContainerExpired":       func() Event { return &ContainerExpiredEvent{} },
	"ContainerWithdrawn":     func() Event { return &ContainerWithdrawnEvent{} },
	"ContainerDeleted":       func() Event { return &ContainerDeletedEvent{} },
	"ReservationCreated":     func() Event { return &ReservationCreatedEvent{} },
	"ReservationRejected":    func() Event { return &ReservationRejectedEvent{} },
	"ReservationConfirmed":   func() Event { return &ReservationConfirmedEvent{} },
	"ReservationCancelled":   func() Event { return &ReservationCancelledEvent{} },
	"ReservationCompleted":   func() Event { return &ReservationCompletedEvent{} },
	"ReadingRecorded":        func() Event { return &ReadingRecordedEvent{} },
	"TemperatureExcursion":   func() Event { return &TemperatureExcursionEvent{} },
	"TemperatureRecovered":   func() Event { return &TemperatureRecoveredEvent{} },
}

// Decode rebuilds a typed event from its type name and JSON payload.
// The returned event is a pointer to the concrete struct.
func Decode(eventType string, data []byte) (Event, error) {
	factory, ok := factories[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	return event, nil
}
