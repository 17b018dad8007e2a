package integrators

import (
	"math"

	"github.com/san-kum/altihold/internal/dynamo"
)

// Hermite evaluates the cubic Hermite interpolant through (ta, xa) and
// (tb, xb) with slopes fa and fb at time t.
func Hermite(ta float64, xa, fa dynamo.State, tb float64, xb, fb dynamo.State, t float64) dynamo.State {
	h := tb - ta
	s := (t - ta) / h
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	out := make(dynamo.State, len(xa))
	for i := range xa {
		out[i] = h00*xa[i] + h10*h*fa[i] + h01*xb[i] + h11*h*fb[i]
	}
	return out
}

// sampler collects the output grid of a solver run. With dt <= 0 it keeps
// every accepted step.
type sampler struct {
	traj   *dynamo.Trajectory
	dt     float64
	t0, t1 float64
	n      int
	next   int
}

func newSampler(traj *dynamo.Trajectory, dt, t0, t1 float64) *sampler {
	s := &sampler{traj: traj, dt: dt, t0: t0, t1: t1}
	if dt > 0 {
		s.n = int(math.Ceil((t1-t0)/dt - 1e-9))
		if s.n < 1 {
			s.n = 1
		}
		traj.Times = make([]float64, 0, s.n+1)
		traj.States = make([]dynamo.State, 0, s.n+1)
	}
	return s
}

func (s *sampler) gridTime(k int) float64 {
	if k >= s.n {
		return s.t1
	}
	return s.t0 + float64(k)*s.dt
}

func (s *sampler) emit(t float64, x dynamo.State) {
	s.traj.Times = append(s.traj.Times, t)
	s.traj.States = append(s.traj.States, x)
}

func (s *sampler) start(t float64, x dynamo.State) {
	s.emit(t, x.Clone())
	s.next = 1
}

// add records the samples falling inside the accepted step [ta, tb].
func (s *sampler) add(ta float64, xa, fa dynamo.State, tb float64, xb, fb dynamo.State) {
	if s.dt <= 0 {
		s.emit(tb, xb.Clone())
		return
	}

	for s.next <= s.n {
		g := s.gridTime(s.next)
		if g > tb {
			return
		}
		if g == tb {
			s.emit(g, xb.Clone())
		} else {
			s.emit(g, Hermite(ta, xa, fa, tb, xb, fb, g))
		}
		s.next++
	}
}
