package models

import (
	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/control"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/physics"
)

// Altitude is the closed loop over the augmented state
// (z, v, eI, kP, kI, kD): the plant, the saturating law and the gain
// adaptation composed into one vector field.
//
// Derive keeps no memory between calls. Adaptive solvers may evaluate it
// at any t, in any order, as often as they like.
type Altitude struct {
	Plant *physics.PointMass
	Law   *control.PID
	Adapt control.Adaptation

	observers []dynamo.Observer
}

func NewAltitude(plant *physics.PointMass, law *control.PID, adapt control.Adaptation) *Altitude {
	return &Altitude{
		Plant: plant,
		Law:   law,
		Adapt: adapt,
	}
}

// AddObserver registers a hook called on every Derive evaluation.
func (a *Altitude) AddObserver(o dynamo.Observer) { a.observers = append(a.observers, o) }

func (a *Altitude) StateDim() int { return dynamo.StateDim }

// Params collects the constants of the loop and the hover (trim) command.
func (a *Altitude) Params() map[string]float64 {
	params := a.Plant.GetParams()
	for k, v := range a.Law.GetParams() {
		params[k] = v
	}
	params["damping"] = a.Adapt.Damping
	params["u_hover"] = a.Plant.HoverThrust()
	return params
}

// Evaluate computes the errors, the raw and clamped command, and V and
// Vdot at state x. The vector field and the post-hoc diagnostic both go
// through here.
func (a *Altitude) Evaluate(x dynamo.State) dynamo.Signals {
	v, eI := x[dynamo.IdxV], x[dynamo.IdxEI]

	sig := a.Law.Compute(x[dynamo.IdxZ], v, eI, control.GainsOf(x))
	sig.V = analysis.Candidate(sig.EZ, sig.EV, eI)
	sig.VDot = analysis.CandidateRate(sig.EZ, sig.EV, eI, v, sig.U, a.Plant.Mass, a.Plant.Gravity)
	return sig
}

// Derive returns (zDot, vDot, eIDot, kPDot, kIDot, kDDot). Gain rates use
// the Vdot of the current state, before any gain moves.
func (a *Altitude) Derive(x dynamo.State, t float64) dynamo.State {
	sig := a.Evaluate(x)

	for _, o := range a.observers {
		o.OnEvaluate(t, x, sig)
	}

	rates := a.Adapt.Rates(sig.VDot, control.GainsOf(x))
	zDot, vDot := a.Plant.Derive(x[dynamo.IdxV], sig.U)

	return dynamo.State{zDot, vDot, sig.EZ, rates.KP, rates.KI, rates.KD}
}
