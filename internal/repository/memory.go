package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lactacare/internal/domain"
)

// InMemoryContainerRepository keeps containers in a map; reads return copies
type InMemoryContainerRepository struct {
	mu         sync.RWMutex
	containers map[string]*domain.Container
}

func NewContainerRepository() *InMemoryContainerRepository {
	return &InMemoryContainerRepository{
		containers: make(map[string]*domain.Container),
	}
}

func (r *InMemoryContainerRepository) Create(ctx context.Context, c *domain.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.containers[c.ID]; exists {
		return fmt.Errorf("container %s already exists", c.ID)
	}
	r.containers[c.ID] = c.Clone()
	return nil
}

func (r *InMemoryContainerRepository) Update(ctx context.Context, c *domain.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.containers[c.ID]
	if !exists {
		return domain.ErrContainerNotFound
	}
	if stored.Version != c.Version {
		return domain.ErrVersionConflict
	}
	c.Version++
	r.containers[c.ID] = c.Clone()
	return nil
}

func (r *InMemoryContainerRepository) FindByID(ctx context.Context, id string) (*domain.Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.containers[id]
	if !exists {
		return nil, domain.ErrContainerNotFound
	}
	return c.Clone(), nil
}

func (r *InMemoryContainerRepository) ActiveIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	active := make([]*domain.Container, 0, len(r.containers))
	for _, c := range r.containers {
		if !c.IsTerminal() {
			active = append(active, c)
		}
	}
	sortContainers(active)
	r.mu.RUnlock()

	ids := make([]string, len(active))
	for i, c := range active {
		ids[i] = c.ID
	}
	return ids, nil
}

func (r *InMemoryContainerRepository) List(ctx context.Context, filter ContainerFilter) ([]*domain.Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Container, 0)
	for _, c := range r.containers {
		if filter.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	sortContainers(out)
	return out, nil
}

func (r *InMemoryContainerRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.containers[id]; !exists {
		return domain.ErrContainerNotFound
	}
	delete(r.containers, id)
	return nil
}

func sortContainers(cs []*domain.Container) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

// InMemoryReservationRepository keeps reservations in a map; reads return copies
type InMemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
}

func NewReservationRepository() *InMemoryReservationRepository {
	return &InMemoryReservationRepository{
		reservations: make(map[string]*domain.Reservation),
	}
}

func (r *InMemoryReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reservations[res.ID]; exists {
		return fmt.Errorf("reservation %s already exists", res.ID)
	}
	r.reservations[res.ID] = res.Clone()
	return nil
}

func (r *InMemoryReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.reservations[res.ID]
	if !exists {
		return domain.ErrReservationNotFound
	}
	if stored.Version != res.Version {
		return domain.ErrVersionConflict
	}
	res.Version++
	r.reservations[res.ID] = res.Clone()
	return nil
}

func (r *InMemoryReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, exists := r.reservations[id]
	if !exists {
		return nil, domain.ErrReservationNotFound
	}
	return res.Clone(), nil
}

func (r *InMemoryReservationRepository) ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]*domain.Reservation, error) {
	day := domain.DateOf(date)
	return r.List(ctx, ReservationFilter{RoomID: roomID, Date: &day})
}

func (r *InMemoryReservationRepository) List(ctx context.Context, filter ReservationFilter) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Reservation, 0)
	for _, res := range r.reservations {
		if filter.Matches(res) {
			out = append(out, res.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// InMemoryReadingRepository keeps readings per unit in arrival order, plus
// the most recent reading of each unit so Latest does not scan the history.
type InMemoryReadingRepository struct {
	mu       sync.RWMutex
	nextID   int64
	readings map[string][]domain.TemperatureReading
	latest   map[string]domain.TemperatureReading
}

func NewReadingRepository() *InMemoryReadingRepository {
	return &InMemoryReadingRepository{
		readings: make(map[string][]domain.TemperatureReading),
		latest:   make(map[string]domain.TemperatureReading),
	}
}

func (r *InMemoryReadingRepository) Append(ctx context.Context, reading *domain.TemperatureReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reading.ID = r.nextID
	r.readings[reading.UnitID] = append(r.readings[reading.UnitID], *reading)

	// late arrivals go to history only
	if current, ok := r.latest[reading.UnitID]; !ok || newerReading(*reading, current) {
		r.latest[reading.UnitID] = *reading
	}
	return nil
}

func (r *InMemoryReadingRepository) Latest(ctx context.Context, unitID string) (*domain.TemperatureReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest, ok := r.latest[unitID]
	if !ok {
		return nil, nil
	}
	return &latest, nil
}

func (r *InMemoryReadingRepository) History(ctx context.Context, unitID string, limit int) ([]domain.TemperatureReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]domain.TemperatureReading(nil), r.readings[unitID]...)
	sort.Slice(out, func(i, j int) bool { return newerReading(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryReadingRepository) Units(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]string, 0, len(r.readings))
	for unit := range r.readings {
		units = append(units, unit)
	}
	sort.Strings(units)
	return units, nil
}

// newerReading orders by observation time, then by arrival id
func newerReading(a, b domain.TemperatureReading) bool {
	if !a.ObservedAt.Equal(b.ObservedAt) {
		return a.ObservedAt.After(b.ObservedAt)
	}
	return a.ID > b.ID
}

// InMemoryAlertStore is an AlertStore for tests and the memory driver
type InMemoryAlertStore struct {
	mu     sync.Mutex
	alerts map[int64]domain.AlertRecord
}

func NewAlertStore() *InMemoryAlertStore {
	return &InMemoryAlertStore{alerts: make(map[int64]domain.AlertRecord)}
}

func (s *InMemoryAlertStore) Save(ctx context.Context, a domain.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = a
	return nil
}

func (s *InMemoryAlertStore) MarkRead(ctx context.Context, ids []int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		a, ok := s.alerts[id]
		if !ok || a.Read {
			continue
		}
		readAt := at
		a.Read = true
		a.ReadAt = &readAt
		s.alerts[id] = a
	}
	return nil
}

func (s *InMemoryAlertStore) LoadAll(ctx context.Context) ([]domain.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AlertRecord, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
