package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.AlertRaised("near_expiry")
		m.SetUnread(3)
		m.Transition("container", "expired")
		m.TickFailure("containers")
		m.ObserveTick("containers", time.Second)
		m.ReservationRejected("capacity_exceeded")
		m.Reading("fridge-1", 4)
		m.Excursion("fridge-1", "too_warm")
		m.VersionConflict("container")
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_CountersAndGauges(t *testing.T) {
	m := New()

	m.AlertRaised("near_expiry")
	m.AlertRaised("near_expiry")
	m.SetUnread(2)
	m.Reading("fridge-1", 7.5)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.alertsRaised.WithLabelValues("near_expiry")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.unreadAlerts))
	assert.Equal(t, 7.5, testutil.ToFloat64(m.temperature.WithLabelValues("fridge-1")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Transition("container", "withdrawn")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "lactacare_state_transitions_total"))
}
