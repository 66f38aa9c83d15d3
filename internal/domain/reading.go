package domain

import "time"

// TemperatureReading is an immutable sensor observation for a cold-storage unit
type TemperatureReading struct {
	ID           int64     `json:"id"`
	UnitID       string    `json:"unit_id"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	ObservedAt   time.Time `json:"observed_at"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// ThermalStatus is the temperature classification of a reading
type ThermalStatus string

const (
	ThermalInRange ThermalStatus = "in_range"
	ThermalTooWarm ThermalStatus = "too_warm"
	ThermalTooCold ThermalStatus = "too_cold"
)

// HumidityStatus is the secondary, non-blocking humidity classification
type HumidityStatus string

const (
	HumidityOK   HumidityStatus = "ok"
	HumidityHigh HumidityStatus = "too_humid"
	HumidityLow  HumidityStatus = "too_dry"
)

// Thresholds are the safe operating limits; bounds themselves are in range
type Thresholds struct {
	MaxTemperatureC float64
	MinTemperatureC float64
	MaxHumidityPct  float64
	MinHumidityPct  float64
}

// DefaultThresholds returns 1.0–6.0 °C and 70–95 % humidity
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxTemperatureC: 6.0,
		MinTemperatureC: 1.0,
		MaxHumidityPct:  95,
		MinHumidityPct:  70,
	}
}

// Classification is the result of checking a reading against thresholds
type Classification struct {
	Thermal  ThermalStatus  `json:"thermal"`
	Humidity HumidityStatus `json:"humidity"`
}

// Excursion reports whether the temperature is out of range
func (c Classification) Excursion() bool {
	return c.Thermal != ThermalInRange
}

// HumidityWarning reports a humidity reading out of range
func (c Classification) HumidityWarning() bool {
	return c.Humidity != HumidityOK
}

// Classify evaluates a reading; it never mutates the reading
func (t Thresholds) Classify(r TemperatureReading) Classification {
	c := Classification{Thermal: ThermalInRange, Humidity: HumidityOK}
	switch {
	case r.TemperatureC > t.MaxTemperatureC:
		c.Thermal = ThermalTooWarm
	case r.TemperatureC < t.MinTemperatureC:
		c.Thermal = ThermalTooCold
	}
	switch {
	case r.HumidityPct > t.MaxHumidityPct:
		c.Humidity = HumidityHigh
	case r.HumidityPct < t.MinHumidityPct:
		c.Humidity = HumidityLow
	}
	return c
}
