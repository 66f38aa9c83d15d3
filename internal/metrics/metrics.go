package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lactacare"

// Metrics holds the prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	alertsRaised       *prometheus.CounterVec
	unreadAlerts       prometheus.Gauge
	transitions        *prometheus.CounterVec
	tickFailures       *prometheus.CounterVec
	tickDuration       *prometheus.HistogramVec
	reservationRejects *prometheus.CounterVec
	temperature        *prometheus.GaugeVec
	excursions         *prometheus.CounterVec
	versionRetries     *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		alertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Alerts raised by kind.",
		}, []string{"kind"}),
		unreadAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_unread",
			Help:      "Current number of unread alerts.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Entity state transitions by entity and target state.",
		}, []string{"entity", "state"}),
		tickFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_failures_total",
			Help:      "Per-entity evaluation failures during scheduled ticks.",
		}, []string{"job"}),
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of scheduled tick passes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		reservationRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_rejected_total",
			Help:      "Rejected reservation requests by reason.",
		}, []string{"reason"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unit_temperature_celsius",
			Help:      "Latest temperature reading per cold-storage unit.",
		}, []string{"unit"}),
		excursions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temperature_excursions_total",
			Help:      "Temperature excursions by unit and status.",
		}, []string{"unit", "status"}),
		versionRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "Optimistic version conflicts that forced a retry.",
		}, []string{"entity"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.alertsRaised,
		m.unreadAlerts,
		m.transitions,
		m.tickFailures,
		m.tickDuration,
		m.reservationRejects,
		m.temperature,
		m.excursions,
		m.versionRetries,
	)
	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) AlertRaised(kind string) {
	if m == nil {
		return
	}
	m.alertsRaised.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetUnread(n int) {
	if m == nil {
		return
	}
	m.unreadAlerts.Set(float64(n))
}

func (m *Metrics) Transition(entity, state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, state).Inc()
}

func (m *Metrics) TickFailure(job string) {
	if m == nil {
		return
	}
	m.tickFailures.WithLabelValues(job).Inc()
}

func (m *Metrics) ObserveTick(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) ReservationRejected(reason string) {
	if m == nil {
		return
	}
	m.reservationRejects.WithLabelValues(reason).Inc()
}

func (m *Metrics) Reading(unit string, temperatureC float64) {
	if m == nil {
		return
	}
	m.temperature.WithLabelValues(unit).Set(temperatureC)
}

func (m *Metrics) Excursion(unit, status string) {
	if m == nil {
		return
	}
	m.excursions.WithLabelValues(unit, status).Inc()
}

func (m *Metrics) VersionConflict(entity string) {
	if m == nil {
		return
	}
	m.versionRetries.WithLabelValues(entity).Inc()
}
