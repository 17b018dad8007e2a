package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/altihold/internal/dynamo"
)

// RK4 is the classic fixed-step fourth-order method. It has no error
// control; it is kept for comparison runs against RK45.
type RK4 struct {
	cfg            dynamo.Config
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4(cfg dynamo.Config) *RK4 {
	return &RK4{cfg: cfg}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	k1 := dyn.Derive(x, t)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2 := dyn.Derive(r.scratch, t+dt*0.5)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3 := dyn.Derive(r.scratch, t+dt*0.5)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4 := dyn.Derive(r.scratch, t+dt)
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Solve integrates on the uniform grid t0 + k*FixedDt, ending exactly at
// t1. Every step is recorded.
func (r *RK4) Solve(ctx context.Context, dyn dynamo.System, x0 dynamo.State, t0, t1 float64) (*dynamo.Trajectory, error) {
	if err := checkProblem(dyn, x0, t0, t1); err != nil {
		return nil, err
	}
	if r.cfg.FixedDt <= 0 {
		return nil, &dynamo.ConfigError{Field: "solver.fixed_dt", Message: "must be positive"}
	}

	steps := int(math.Ceil((t1-t0)/r.cfg.FixedDt - 1e-9))
	if steps < 1 {
		steps = 1
	}

	x := x0.Clone()
	t := t0
	if steps > r.cfg.MaxSteps {
		return nil, diverged(0, t, x, dynamo.ErrStepBudget)
	}

	traj := &dynamo.Trajectory{
		Times:  make([]float64, 0, steps+1),
		States: make([]dynamo.State, 0, steps+1),
	}
	traj.Times = append(traj.Times, t)
	traj.States = append(traj.States, x.Clone())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w at t=%.6g: %w", dynamo.ErrContextCanceled, t, ctx.Err())
		default:
		}

		tNext := t0 + float64(i+1)*r.cfg.FixedDt
		if i == steps-1 {
			tNext = t1
		}

		x = r.Step(dyn, x, t, tNext-t)
		traj.Stats.Evaluations += 4
		if !x.IsValid() {
			return nil, diverged(i, tNext, x, dynamo.ErrInvalidState)
		}

		t = tNext
		traj.Stats.Accepted++
		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, x)
	}

	return traj, nil
}
