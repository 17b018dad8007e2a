package control

import "github.com/san-kum/altihold/internal/dynamo"

// Gains are the proportional, integral and derivative gains. In the
// augmented state they are integration variables, not parameters.
type Gains struct {
	KP float64
	KI float64
	KD float64
}

// GainsOf reads the gains out of an augmented state.
func GainsOf(x dynamo.State) Gains {
	return Gains{KP: x[dynamo.IdxKP], KI: x[dynamo.IdxKI], KD: x[dynamo.IdxKD]}
}

// PID tracks a fixed altitude with a zero-velocity hold target. The
// integral error is supplied by the caller as part of the state.
type PID struct {
	Target float64
	UMin   float64
	UMax   float64
}

func NewPID(target, uMin, uMax float64) *PID {
	return &PID{
		Target: target,
		UMin:   uMin,
		UMax:   uMax,
	}
}

// Errors returns the altitude and velocity tracking errors.
func (p *PID) Errors(z, v float64) (eZ, eV float64) {
	return p.Target - z, -v
}

// Compute evaluates the law and fills EZ, EV, URaw and U of the returned
// signals. V and VDot are left for the caller.
func (p *PID) Compute(z, v, eI float64, g Gains) dynamo.Signals {
	eZ, eV := p.Errors(z, v)
	uRaw := g.KP*eZ + g.KI*eI + g.KD*eV
	return dynamo.Signals{
		EZ:   eZ,
		EV:   eV,
		URaw: uRaw,
		U:    Saturate(uRaw, p.UMin, p.UMax),
	}
}

// Saturate clamps u to [lo, hi]. NaN passes through so a blown-up
// evaluation stays visible to the integrator.
func Saturate(u, lo, hi float64) float64 {
	if u > hi {
		return hi
	}
	if u < lo {
		return lo
	}
	return u
}

// GetParams returns the law constants for reporting.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"target": p.Target,
		"u_min":  p.UMin,
		"u_max":  p.UMax,
	}
}
