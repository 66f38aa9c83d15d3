package domain

import (
	"time"

	"github.com/google/uuid"
)

// StorageMode is how a container is kept cold
type StorageMode string

const (
	Refrigerated StorageMode = "refrigerated"
	Frozen       StorageMode = "frozen"
)

// ContainerState is the custody state of a container
type ContainerState string

const (
	ContainerStored           ContainerState = "stored"
	ContainerFlaggedForPickup ContainerState = "flagged_for_pickup"
	ContainerWithdrawn        ContainerState = "withdrawn"
	ContainerExpired          ContainerState = "expired"
)

const (
	RefrigeratedShelfLife   = 5 * 24 * time.Hour
	FrozenShelfLifeMonths   = 6
	DefaultNearExpiryWindow = 48 * time.Hour
	DefaultPickupWindow     = 24 * time.Hour
)

// ParseStorageMode validates a storage mode coming from outside the domain
func ParseStorageMode(s string) (StorageMode, error) {
	switch StorageMode(s) {
	case Refrigerated, Frozen:
		return StorageMode(s), nil
	default:
		return "", NewInvalidInput("unknown storage mode %q", s)
	}
}

// ExpiryFor derives the expiry instant from the storage mode
func ExpiryFor(mode StorageMode, extractedAt time.Time) (time.Time, error) {
	switch mode {
	case Refrigerated:
		return extractedAt.Add(RefrigeratedShelfLife), nil
	case Frozen:
		return extractedAt.AddDate(0, FrozenShelfLifeMonths, 0), nil
	default:
		return time.Time{}, NewInvalidInput("unknown storage mode %q", mode)
	}
}

// Container represents a unit of expressed milk in custody
type Container struct {
	ID             string
	VolumeMl       float64
	ExtractedAt    time.Time
	ExpiresAt      time.Time
	StorageMode    StorageMode
	State          ContainerState
	FlaggedAt      *time.Time // set only while FlaggedForPickup
	OwnerPatientID string
	WithdrawnAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int // For optimistic locking
}

// NewContainer creates a stored container with its expiry derived from the storage mode
func NewContainer(volumeMl float64, mode StorageMode, ownerPatientID string, extractedAt, now time.Time) (*Container, error) {
	if !(volumeMl > 0) {
		return nil, NewInvalidInput("volume must be positive, got %v", volumeMl)
	}
	if ownerPatientID == "" {
		return nil, NewInvalidInput("owner patient id is required")
	}
	if extractedAt.IsZero() {
		return nil, NewInvalidInput("extraction time is required")
	}
	expiresAt, err := ExpiryFor(mode, extractedAt)
	if err != nil {
		return nil, err
	}

	return &Container{
		ID:             uuid.New().String(),
		VolumeMl:       volumeMl,
		ExtractedAt:    extractedAt.UTC(),
		ExpiresAt:      expiresAt.UTC(),
		StorageMode:    mode,
		State:          ContainerStored,
		OwnerPatientID: ownerPatientID,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
		Version:        1,
	}, nil
}

// IsTerminal reports whether the container can no longer change
func (c *Container) IsTerminal() bool {
	return c.State == ContainerWithdrawn || c.State == ContainerExpired
}

// Validate checks the record invariants; persisted records that fail here are skipped by ticks
func (c *Container) Validate() error {
	if c.ID == "" {
		return NewInvalidInput("container without id")
	}
	if !(c.VolumeMl > 0) {
		return NewInvalidInput("container %s has non-positive volume", c.ID)
	}
	if !c.ExpiresAt.After(c.ExtractedAt) {
		return NewInvalidInput("container %s expires before extraction", c.ID)
	}
	switch c.State {
	case ContainerStored, ContainerWithdrawn, ContainerExpired:
		if c.State == ContainerStored && c.FlaggedAt != nil {
			return NewInvalidInput("container %s is stored but carries a flag time", c.ID)
		}
	case ContainerFlaggedForPickup:
		if c.FlaggedAt == nil {
			return NewInvalidInput("container %s is flagged without a flag time", c.ID)
		}
	default:
		return NewInvalidInput("container %s has unknown state %q", c.ID, c.State)
	}
	return nil
}

// FlagForPickup starts the pickup window
func (c *Container) FlagForPickup(now time.Time) error {
	if c.State != ContainerStored {
		return NewInvalidTransition("container %s cannot be flagged from state %s", c.ID, c.State)
	}
	flaggedAt := now.UTC()
	c.State = ContainerFlaggedForPickup
	c.FlaggedAt = &flaggedAt
	c.UpdatedAt = flaggedAt
	return nil
}

// CancelFlag returns a flagged container to storage
func (c *Container) CancelFlag(now time.Time) error {
	if c.State != ContainerFlaggedForPickup {
		return NewInvalidTransition("container %s has no pickup flag to cancel (state %s)", c.ID, c.State)
	}
	c.State = ContainerStored
	c.FlaggedAt = nil
	c.UpdatedAt = now.UTC()
	return nil
}

// Withdraw records the physical retrieval of a flagged container
func (c *Container) Withdraw(now time.Time) error {
	if c.State != ContainerFlaggedForPickup {
		return NewInvalidTransition("container %s cannot be withdrawn from state %s", c.ID, c.State)
	}
	at := now.UTC()
	c.State = ContainerWithdrawn
	c.WithdrawnAt = &at
	c.UpdatedAt = at
	return nil
}

// Expire marks a stored container as expired
func (c *Container) Expire(now time.Time) error {
	if c.State != ContainerStored {
		return NewInvalidTransition("container %s cannot expire from state %s", c.ID, c.State)
	}
	c.State = ContainerExpired
	c.UpdatedAt = now.UTC()
	return nil
}

// Decision is what a tick must do with one container
type Decision int

const (
	DecisionNone Decision = iota
	DecisionExpire
	DecisionWithdraw
	DecisionNearExpiry
	DecisionPickupOverdue
)

func (d Decision) String() string {
	switch d {
	case DecisionExpire:
		return "expire"
	case DecisionWithdraw:
		return "withdraw"
	case DecisionNearExpiry:
		return "near_expiry"
	case DecisionPickupOverdue:
		return "pickup_overdue"
	default:
		return "none"
	}
}

// Rules holds the time windows used by Evaluate
type Rules struct {
	NearExpiryWindow time.Duration
	PickupWindow     time.Duration
}

// DefaultRules returns the 48h near-expiry and 24h pickup windows
func DefaultRules() Rules {
	return Rules{
		NearExpiryWindow: DefaultNearExpiryWindow,
		PickupWindow:     DefaultPickupWindow,
	}
}

// Evaluate decides the transition (or notification) due at now.
// Flagged containers follow the pickup timer only and never expire.
func (c *Container) Evaluate(now time.Time, rules Rules) (Decision, error) {
	if err := c.Validate(); err != nil {
		return DecisionNone, err
	}

	switch c.State {
	case ContainerStored:
		if !now.Before(c.ExpiresAt) {
			return DecisionExpire, nil
		}
		if c.ExpiresAt.Sub(now) <= rules.NearExpiryWindow {
			return DecisionNearExpiry, nil
		}
	case ContainerFlaggedForPickup:
		if now.Sub(*c.FlaggedAt) >= rules.PickupWindow {
			return DecisionWithdraw, nil
		}
		if !now.Before(c.ExpiresAt) {
			return DecisionPickupOverdue, nil
		}
	}
	return DecisionNone, nil
}

// Clone returns a deep copy
func (c *Container) Clone() *Container {
	if c == nil {
		return nil
	}
	cp := *c
	if c.FlaggedAt != nil {
		t := *c.FlaggedAt
		cp.FlaggedAt = &t
	}
	if c.WithdrawnAt != nil {
		t := *c.WithdrawnAt
		cp.WithdrawnAt = &t
	}
	return &cp
}
