package domain

import "time"

// AlertKind classifies alert records
type AlertKind string

const (
	AlertNearExpiry           AlertKind = "near_expiry"
	AlertPickupOverdue        AlertKind = "pickup_overdue"
	AlertTemperatureExcursion AlertKind = "temperature_excursion"
	AlertContainerWithdrawn   AlertKind = "container_withdrawn"
	AlertContainerExpired     AlertKind = "container_expired"
	AlertCapacityReached      AlertKind = "capacity_reached"
)

// AlertKinds lists every known kind
var AlertKinds = []AlertKind{
	AlertNearExpiry,
	AlertPickupOverdue,
	AlertTemperatureExcursion,
	AlertContainerWithdrawn,
	AlertContainerExpired,
	AlertCapacityReached,
}

// ParseAlertKind validates an alert kind
func ParseAlertKind(s string) (AlertKind, error) {
	for _, k := range AlertKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", NewInvalidInput("unknown alert kind %q", s)
}

// AlertRecord is a derived notification; only Read/ReadAt ever change after creation
type AlertRecord struct {
	ID        int64      `json:"id"`
	Kind      AlertKind  `json:"kind"`
	SubjectID string     `json:"subject_id"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
