package metrics

import (
	"math"

	"github.com/san-kum/altihold/internal/dynamo"
)

// NotSettled is reported by Settling when the altitude error ends outside
// the band.
const NotSettled = -1.0

// Settling reports the first time after which |eZ| stays within band for
// every later sample.
type Settling struct {
	name      string
	band      float64
	settledAt float64
	inside    bool
	samples   int
}

func NewSettling(band float64) *Settling {
	return &Settling{
		name: "settling_time",
		band: band,
	}
}

func (s *Settling) Name() string { return s.name }

func (s *Settling) Observe(x dynamo.State, sig dynamo.Signals, t float64) {
	s.samples++
	if math.Abs(sig.EZ) > s.band {
		s.inside = false
		return
	}
	if !s.inside {
		s.inside = true
		s.settledAt = t
	}
}

func (s *Settling) Value() float64 {
	if s.samples == 0 || !s.inside {
		return NotSettled
	}
	return s.settledAt
}

func (s *Settling) Reset() {
	s.settledAt = 0
	s.inside = false
	s.samples = 0
}
