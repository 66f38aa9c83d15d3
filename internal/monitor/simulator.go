package monitor

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimulatedSource produces a bounded random walk per unit, with occasional
// door-open spikes, for deployments without real sensors.
type SimulatedSource struct {
	mu          sync.Mutex
	rng         *rand.Rand
	units       []string
	temperature map[string]float64
	humidity    map[string]float64
	spikeChance float64
}

func NewSimulatedSource(units []string, seed int64) *SimulatedSource {
	s := &SimulatedSource{
		rng:         rand.New(rand.NewSource(seed)),
		units:       append([]string(nil), units...),
		temperature: make(map[string]float64, len(units)),
		humidity:    make(map[string]float64, len(units)),
		spikeChance: 0.02,
	}
	for _, u := range units {
		s.temperature[u] = 4.0
		s.humidity[u] = 82
	}
	return s
}

func (s *SimulatedSource) Units() []string {
	return append([]string(nil), s.units...)
}

func (s *SimulatedSource) Read(ctx context.Context, unitID string, at time.Time) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.temperature[unitID]
	if !ok {
		t = 4.0
	}
	h, ok := s.humidity[unitID]
	if !ok {
		h = 82
	}

	// drift back towards the set point
	t += (4.0-t)*0.2 + (s.rng.Float64()-0.5)*0.6
	h += (82-h)*0.2 + (s.rng.Float64()-0.5)*3
	if s.rng.Float64() < s.spikeChance {
		t += 2.5 + s.rng.Float64()*2
	}

	t = clamp(t, -2, 12)
	h = clamp(h, 40, 100)
	s.temperature[unitID] = t
	s.humidity[unitID] = h
	return round1(t), round1(h), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
