package analysis

import "github.com/san-kum/altihold/internal/dynamo"

// Candidate is the Lyapunov candidate V = ½eZ² + ½eV² + ½eI².
func Candidate(eZ, eV, eI float64) float64 {
	return 0.5*eZ*eZ + 0.5*eV*eV + 0.5*eI*eI
}

// CandidateRate is dV/dt along the closed loop for velocity v and applied
// command u:
//
//	Vdot = eZ·(−v) + eV·(−u/mass + g) + eI·eZ
func CandidateRate(eZ, eV, eI, v, u, mass, g float64) float64 {
	return eZ*(-v) + eV*(-u/mass+g) + eI*eZ
}

// Diagnostics holds the derived signals of a trajectory, index-aligned
// with its time samples.
type Diagnostics struct {
	Times []float64
	EZ    []float64
	EV    []float64
	U     []float64
	V     []float64
	VDot  []float64
}

func (d *Diagnostics) Len() int { return len(d.Times) }

// At returns the signals of sample i.
func (d *Diagnostics) At(i int) dynamo.Signals {
	return dynamo.Signals{EZ: d.EZ[i], EV: d.EV[i], U: d.U[i], V: d.V[i], VDot: d.VDot[i]}
}

// Diagnose recomputes the derived signals at every trajectory sample and
// feeds each sample to the given metrics in time order.
func Diagnose(traj *dynamo.Trajectory, ev dynamo.Evaluator, metrics ...dynamo.Metric) *Diagnostics {
	n := traj.Len()
	d := &Diagnostics{
		Times: make([]float64, n),
		EZ:    make([]float64, n),
		EV:    make([]float64, n),
		U:     make([]float64, n),
		V:     make([]float64, n),
		VDot:  make([]float64, n),
	}

	for i, x := range traj.States {
		t := traj.Times[i]
		sig := ev.Evaluate(x)

		d.Times[i] = t
		d.EZ[i] = sig.EZ
		d.EV[i] = sig.EV
		d.U[i] = sig.U
		d.V[i] = sig.V
		d.VDot[i] = sig.VDot

		for _, m := range metrics {
			m.Observe(x, sig, t)
		}
	}

	return d
}
