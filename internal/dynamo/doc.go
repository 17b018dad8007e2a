// Package dynamo provides the core simulation primitives for the
// adaptive altitude-hold loop.
//
// The package defines the fundamental types shared by every other
// package:
//
//   - [State]: the augmented state vector (z, v, eI, kP, kI, kD)
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Solver]: integrates a System over a horizon into a [Trajectory]
//   - [Signals]: instantaneous quantities derived from one state sample
//   - [Observer] and [Metric]: hooks fed by evaluations and diagnostics
//
// # Example
//
//	sys := models.NewAltitude(plant, law, adapt)
//	solver := integrators.NewRK45(cfg)
//	traj, err := solver.Solve(ctx, sys, x0, 0, 100)
//	if errors.Is(err, dynamo.ErrDivergence) {
//	    // the run blew up, no trajectory is returned
//	}
//
// # Thread Safety
//
// Trajectories are immutable once returned and may be shared freely.
// Solvers hold scratch buffers and must not be shared between
// goroutines; build one per run.
package dynamo
