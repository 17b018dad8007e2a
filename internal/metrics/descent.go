package metrics

import "github.com/san-kum/altihold/internal/dynamo"

// Descent is the fraction of the observed time during which the Lyapunov
// candidate was decreasing.
type Descent struct {
	name string
	avg  timeAverage
}

func NewDescent() *Descent {
	return &Descent{name: "lyapunov_descent"}
}

func (d *Descent) Name() string { return d.name }

func (d *Descent) Observe(x dynamo.State, sig dynamo.Signals, t float64) {
	d.avg.add(t, indicator(sig.VDot < 0))
}

func (d *Descent) Value() float64 { return d.avg.value() }

func (d *Descent) Reset() { d.avg.reset() }
