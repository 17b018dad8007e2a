package metrics

import (
	"math"

	"github.com/san-kum/altihold/internal/dynamo"
)

// ControlEffort is the time-averaged magnitude of the applied command.
type ControlEffort struct {
	name string
	avg  timeAverage
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x dynamo.State, sig dynamo.Signals, t float64) {
	c.avg.add(t, math.Abs(sig.U))
}

func (c *ControlEffort) Value() float64 {
	return c.avg.value()
}

func (c *ControlEffort) Reset() {
	c.avg.reset()
}
