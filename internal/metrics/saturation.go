package metrics

import "github.com/san-kum/altihold/internal/dynamo"

// Saturation is the fraction of the observed time the command sat on
// either actuator limit.
type Saturation struct {
	name       string
	uMin, uMax float64
	avg        timeAverage
}

func NewSaturation(uMin, uMax float64) *Saturation {
	return &Saturation{
		name: "saturation_fraction",
		uMin: uMin,
		uMax: uMax,
	}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(x dynamo.State, sig dynamo.Signals, t float64) {
	s.avg.add(t, indicator(sig.Saturated(s.uMin, s.uMax)))
}

func (s *Saturation) Value() float64 { return s.avg.value() }

func (s *Saturation) Reset() { s.avg.reset() }
