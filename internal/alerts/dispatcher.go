package alerts

import (
	"context"
	"fmt"
	"sync"

	"lactacare/internal/clock"
	"lactacare/internal/domain"
	"lactacare/internal/metrics"
	"lactacare/internal/repository"

	"go.uber.org/zap"
)

// ChangeType describes what happened to the alert read model
type ChangeType string

const (
	ChangeRaised ChangeType = "raised"
	ChangeRead   ChangeType = "read"
)

// Change is delivered to listeners after the read model changed
type Change struct {
	Type    ChangeType
	Records []domain.AlertRecord
}

// Listener observes read model changes (cache invalidation, push notifications)
type Listener func(ctx context.Context, change Change)

type pendingKey struct {
	kind    domain.AlertKind
	subject string
}

// Dispatcher derives alert records from domain events and serves the
// notification read model. It never touches the registries.
type Dispatcher struct {
	mu      sync.RWMutex
	records []domain.AlertRecord // ascending id
	index   map[int64]int
	pending map[pendingKey]int64 // unread alert per kind and subject
	nextID  int64
	unread  int

	store     repository.AlertStore
	listeners []Listener
	metrics   *metrics.Metrics
	clock     clock.Clock
	logger    *zap.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

func WithStore(store repository.AlertStore) Option {
	return func(d *Dispatcher) { d.store = store }
}

func WithListener(l Listener) Option {
	return func(d *Dispatcher) { d.listeners = append(d.listeners, l) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

func NewDispatcher(logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		index:   make(map[int64]int),
		pending: make(map[pendingKey]int64),
		clock:   clock.System(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Restore loads persisted alerts, continuing the id sequence and the unread counter
func (d *Dispatcher) Restore(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	records, err := d.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alerts: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = make([]domain.AlertRecord, 0, len(records))
	d.index = make(map[int64]int, len(records))
	d.pending = make(map[pendingKey]int64)
	d.unread = 0
	d.nextID = 0
	for _, r := range records {
		d.index[r.ID] = len(d.records)
		d.records = append(d.records, r)
		if r.ID > d.nextID {
			d.nextID = r.ID
		}
		if !r.Read {
			d.unread++
			d.pending[pendingKey{r.Kind, r.SubjectID}] = r.ID
		}
	}
	d.metrics.SetUnread(d.unread)

	d.logger.Info("Alerts restored",
		zap.Int("total", len(d.records)),
		zap.Int("unread", d.unread),
	)
	return nil
}

// Raise always records a new unread alert
func (d *Dispatcher) Raise(ctx context.Context, kind domain.AlertKind, subjectID, message string) domain.AlertRecord {
	d.mu.Lock()
	record := d.appendLocked(ctx, kind, subjectID, message)
	d.mu.Unlock()

	d.notify(ctx, Change{Type: ChangeRaised, Records: []domain.AlertRecord{record}})
	return record
}

// RaiseOnce records an alert unless an unread one with the same kind and
// subject exists, in which case that one is returned with raised=false.
func (d *Dispatcher) RaiseOnce(ctx context.Context, kind domain.AlertKind, subjectID, message string) (domain.AlertRecord, bool) {
	d.mu.Lock()
	if id, ok := d.pending[pendingKey{kind, subjectID}]; ok {
		existing := d.records[d.index[id]]
		d.mu.Unlock()
		return existing, false
	}
	record := d.appendLocked(ctx, kind, subjectID, message)
	d.mu.Unlock()

	d.notify(ctx, Change{Type: ChangeRaised, Records: []domain.AlertRecord{record}})
	return record, true
}

// HasPending reports whether an unread alert of that kind exists for the subject
func (d *Dispatcher) HasPending(kind domain.AlertKind, subjectID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.pending[pendingKey{kind, subjectID}]
	return ok
}

func (d *Dispatcher) appendLocked(ctx context.Context, kind domain.AlertKind, subjectID, message string) domain.AlertRecord {
	d.nextID++
	record := domain.AlertRecord{
		ID:        d.nextID,
		Kind:      kind,
		SubjectID: subjectID,
		Message:   message,
		CreatedAt: d.clock.Now(),
	}
	d.index[record.ID] = len(d.records)
	d.records = append(d.records, record)
	d.pending[pendingKey{kind, subjectID}] = record.ID
	d.unread++

	if d.store != nil {
		if err := d.store.Save(ctx, record); err != nil {
			d.logger.Error("Failed to persist alert",
				zap.Int64("alert_id", record.ID),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}
	d.metrics.AlertRaised(string(kind))
	d.metrics.SetUnread(d.unread)

	d.logger.Info("Alert raised",
		zap.Int64("alert_id", record.ID),
		zap.String("kind", string(kind)),
		zap.String("subject_id", subjectID),
	)
	return record
}

// MarkRead marks one alert as read. Unknown ids and already-read alerts are no-ops.
func (d *Dispatcher) MarkRead(ctx context.Context, id int64) {
	d.mu.Lock()
	pos, ok := d.index[id]
	if !ok || d.records[pos].Read {
		d.mu.Unlock()
		if !ok {
			d.logger.Debug("Mark read on unknown alert ignored", zap.Int64("alert_id", id))
		}
		return
	}
	changed := d.markLocked(ctx, []int{pos})
	d.mu.Unlock()

	d.notify(ctx, Change{Type: ChangeRead, Records: changed})
}

// MarkAllRead marks every unread alert as read and returns how many changed
func (d *Dispatcher) MarkAllRead(ctx context.Context) int {
	d.mu.Lock()
	positions := make([]int, 0, d.unread)
	for i := range d.records {
		if !d.records[i].Read {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		d.mu.Unlock()
		return 0
	}
	changed := d.markLocked(ctx, positions)
	d.mu.Unlock()

	d.notify(ctx, Change{Type: ChangeRead, Records: changed})
	return len(changed)
}

func (d *Dispatcher) markLocked(ctx context.Context, positions []int) []domain.AlertRecord {
	now := d.clock.Now()
	ids := make([]int64, 0, len(positions))
	changed := make([]domain.AlertRecord, 0, len(positions))

	for _, pos := range positions {
		r := &d.records[pos]
		readAt := now
		r.Read = true
		r.ReadAt = &readAt
		d.unread--

		key := pendingKey{r.Kind, r.SubjectID}
		if d.pending[key] == r.ID {
			delete(d.pending, key)
		}
		ids = append(ids, r.ID)
		changed = append(changed, *r)
	}

	if d.store != nil {
		if err := d.store.MarkRead(ctx, ids, now); err != nil {
			d.logger.Error("Failed to persist read marks", zap.Int("count", len(ids)), zap.Error(err))
		}
	}
	d.metrics.SetUnread(d.unread)
	return changed
}

// List returns the alerts passing the filter, newest first
func (d *Dispatcher) List(filter Filter) []domain.AlertRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.AlertRecord, 0)
	for i := len(d.records) - 1; i >= 0; i-- {
		if filter.Matches(d.records[i]) {
			out = append(out, d.records[i])
		}
	}
	return out
}

// Get returns a single alert
func (d *Dispatcher) Get(id int64) (domain.AlertRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pos, ok := d.index[id]
	if !ok {
		return domain.AlertRecord{}, false
	}
	return d.records[pos], true
}

// UnreadCount returns the maintained unread counter
func (d *Dispatcher) UnreadCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unread
}

// AddListener registers l for changes after construction, e.g. a cache that
// itself reads from the dispatcher
func (d *Dispatcher) AddListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

func (d *Dispatcher) notify(ctx context.Context, change Change) {
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, change)
	}
}
