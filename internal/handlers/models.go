package handlers

import (
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/registry"
)

// RegisterContainerRequest is the body of POST /containers
// @Description Registro de un contenedor de leche extraída
type RegisterContainerRequest struct {
	// Volumen en mililitros (> 0)
	VolumeMl float64 `json:"volume_ml" binding:"required" example:"120"`
	// Modo de almacenamiento: refrigerated (5 días) o frozen (6 meses)
	StorageMode string `json:"storage_mode" binding:"required" example:"refrigerated"`
	// Paciente dueña del contenedor
	OwnerPatientID string `json:"owner_patient_id" binding:"required" example:"patient-42"`
	// Momento de la extracción (RFC3339); no puede estar en el futuro
	ExtractedAt time.Time `json:"extracted_at" binding:"required" example:"2024-01-15T08:30:00Z"`
}

// ContainerResponse is the public view of a container
type ContainerResponse struct {
	ID             string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	VolumeMl       float64    `json:"volume_ml" example:"120"`
	StorageMode    string     `json:"storage_mode" example:"refrigerated"`
	State          string     `json:"state" example:"stored"`
	OwnerPatientID string     `json:"owner_patient_id" example:"patient-42"`
	ExtractedAt    time.Time  `json:"extracted_at" example:"2024-01-15T08:30:00Z"`
	ExpiresAt      time.Time  `json:"expires_at" example:"2024-01-18T08:30:00Z"`
	FlaggedAt      *time.Time `json:"flagged_at,omitempty"`
	WithdrawnAt    *time.Time `json:"withdrawn_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version" example:"1"`
}

func toContainerResponse(c *domain.Container) ContainerResponse {
	return ContainerResponse{
		ID:             c.ID,
		VolumeMl:       c.VolumeMl,
		StorageMode:    string(c.StorageMode),
		State:          string(c.State),
		OwnerPatientID: c.OwnerPatientID,
		ExtractedAt:    c.ExtractedAt,
		ExpiresAt:      c.ExpiresAt,
		FlaggedAt:      c.FlaggedAt,
		WithdrawnAt:    c.WithdrawnAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

func toContainerResponses(cs []*domain.Container) []ContainerResponse {
	out := make([]ContainerResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toContainerResponse(c))
	}
	return out
}

// CreateReservationRequest is the body of POST /reservations
// @Description Solicitud de reserva de una sala de lactancia
type CreateReservationRequest struct {
	PatientID string `json:"patient_id" binding:"required" example:"patient-42"`
	RoomID    string `json:"room_id" binding:"required" example:"sala-1"`
	// Fecha (YYYY-MM-DD)
	Date string `json:"date" binding:"required" example:"2024-01-15"`
	// Hora de inicio (HH:MM)
	StartTime string `json:"start_time" binding:"required" example:"09:00"`
	// Hora de fin (HH:MM), posterior al inicio
	EndTime string `json:"end_time" binding:"required" example:"09:30"`
}

// CompleteReservationRequest optionally lists containers handed over during the attention
type CompleteReservationRequest struct {
	ContainerIDs []string `json:"container_ids"`
}

// ReservationResponse is the public view of a reservation
type ReservationResponse struct {
	ID        string    `json:"id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	PatientID string    `json:"patient_id" example:"patient-42"`
	RoomID    string    `json:"room_id" example:"sala-1"`
	Date      string    `json:"date" example:"2024-01-15"`
	StartTime string    `json:"start_time" example:"09:00"`
	EndTime   string    `json:"end_time" example:"09:30"`
	State     string    `json:"state" example:"pending"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version" example:"1"`
}

func toReservationResponse(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		PatientID: r.PatientID,
		RoomID:    r.RoomID,
		Date:      r.Date.Format(domain.DateLayout),
		StartTime: r.StartTime.String(),
		EndTime:   r.EndTime.String(),
		State:     string(r.State),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

func toReservationResponses(rs []*domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservationResponse(r))
	}
	return out
}

// OccupancyResponse counts the active reservations overlapping a slot
type OccupancyResponse struct {
	RoomID    string `json:"room_id" example:"sala-1"`
	Date      string `json:"date" example:"2024-01-15"`
	StartTime string `json:"start_time" example:"09:00"`
	EndTime   string `json:"end_time" example:"09:30"`
	Active    int    `json:"active" example:"1"`
}

// AttentionResponse is returned when a reservation is completed
type AttentionResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Containers  []ContainerResponse `json:"containers"`
}

func toAttentionResponse(res *registry.AttentionResult) AttentionResponse {
	return AttentionResponse{
		Reservation: toReservationResponse(res.Reservation),
		Containers:  toContainerResponses(res.Containers),
	}
}

// RecordReadingRequest is the body of POST /temperature/readings
type RecordReadingRequest struct {
	UnitID       string   `json:"unit_id" binding:"required" example:"fridge-1"`
	TemperatureC *float64 `json:"temperature_c" binding:"required" example:"4.2"`
	HumidityPct  float64  `json:"humidity_pct" example:"82"`
	// Momento de la observación (RFC3339); por defecto, ahora
	ObservedAt *time.Time `json:"observed_at,omitempty" example:"2024-01-15T08:30:00Z"`
}

// ListResponse wraps a list with its size
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count" example:"1"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// UnreadCountResponse is returned by GET /alerts/unread-count
type UnreadCountResponse struct {
	Unread int `json:"unread" example:"3"`
}

// MarkAllReadResponse is returned by POST /alerts/read-all
type MarkAllReadResponse struct {
	Marked int `json:"marked" example:"3"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message" example:"container deleted successfully"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status" example:"healthy"`
	Service string            `json:"service" example:"lactacare-api"`
	Checks  map[string]string `json:"checks"`
}

// StatsResponse is returned by GET /monitoring/stats
type StatsResponse struct {
	Containers        map[string]int       `json:"containers"`
	Reservations      map[string]int       `json:"reservations"`
	UnreadAlerts      int                  `json:"unread_alerts"`
	MonitoredUnits    int                  `json:"monitored_units"`
	LastContainerTick *registry.TickReport `json:"last_container_tick,omitempty"`
}
