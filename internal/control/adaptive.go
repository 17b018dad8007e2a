package control

// Adaptation moves every gain along kDot = Damping * Vdot * k. Gains
// shrink while the Lyapunov candidate decreases and grow while it
// increases. Zero is an absorbing value of the law.
type Adaptation struct {
	Damping float64
}

// Rates returns the time-derivative of each gain for the given Vdot.
func (a Adaptation) Rates(vDot float64, g Gains) Gains {
	return Gains{
		KP: a.Damping * vDot * g.KP,
		KI: a.Damping * vDot * g.KI,
		KD: a.Damping * vDot * g.KD,
	}
}
