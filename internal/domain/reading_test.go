package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholds_Classify(t *testing.T) {
	th := DefaultThresholds()

	testCases := []struct {
		temp     float64
		humidity float64
		thermal  ThermalStatus
		hum      HumidityStatus
	}{
		{4.0, 80, ThermalInRange, HumidityOK},
		{6.0, 80, ThermalInRange, HumidityOK},
		{6.01, 80, ThermalTooWarm, HumidityOK},
		{1.0, 70, ThermalInRange, HumidityOK},
		{0.99, 80, ThermalTooCold, HumidityOK},
		{4.0, 95.5, ThermalInRange, HumidityHigh},
		{4.0, 69, ThermalInRange, HumidityLow},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%v_%v", tc.temp, tc.humidity), func(t *testing.T) {
			c := th.Classify(TemperatureReading{UnitID: "u", TemperatureC: tc.temp, HumidityPct: tc.humidity})
			assert.Equal(t, tc.thermal, c.Thermal)
			assert.Equal(t, tc.hum, c.Humidity)
			assert.Equal(t, tc.thermal != ThermalInRange, c.Excursion())
			assert.Equal(t, tc.hum != HumidityOK, c.HumidityWarning())
		})
	}
}

func TestParseAlertKind(t *testing.T) {
	k, err := ParseAlertKind("near_expiry")
	assert.NoError(t, err)
	assert.Equal(t, AlertNearExpiry, k)

	_, err = ParseAlertKind("nope")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDomainError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewCapacityExceeded("room %s full", "r1"))

	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.False(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, KindCapacityExceeded, KindOf(err))
	assert.Equal(t, KindNotFound, KindOf(ErrContainerNotFound))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
