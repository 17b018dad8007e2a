package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/altihold/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// order of the error estimator, used by the step-size controller.
const errorOrder = 4

// RK45 is an adaptive Dormand-Prince 5(4) solver with per-component
// mixed absolute/relative error control.
type RK45 struct {
	cfg      dynamo.Config
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45(cfg dynamo.Config) *RK45 {
	return &RK45{
		cfg:      cfg,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// scaleFor is the step-size factor after an attempt with the given
// error norm.
func (r *RK45) scaleFor(errNorm float64) float64 {
	switch {
	case math.IsNaN(errNorm) || math.IsInf(errNorm, 0):
		return r.minScale
	case errNorm > 1:
		return math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	case errNorm > 0:
		return math.Min(r.maxScale, r.safety*math.Pow(errNorm, -1.0/(errorOrder+1)))
	default:
		return r.maxScale
	}
}

// attempt advances x by h given k1 = f(x, t). It returns the fifth-order
// solution, f at the new point (first stage of the next step) and the RMS
// of the scaled local error estimate.
func (r *RK45) attempt(dyn dynamo.System, x, k1 dynamo.State, t, h float64) (dynamo.State, dynamo.State, float64) {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + h*b21*k1[i]
	}
	k2 := dyn.Derive(x2, t+a2*h)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, t+a3*h)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, t+a4*h)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, t+a5*h)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, t+h)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, t+h)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.cfg.AbsTol + r.cfg.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}

	return xNew, k7, math.Sqrt(sum / float64(n))
}

// initialStep picks the first step from the size of the solution and its
// derivative (Hairer, Nørsett & Wanner, II.4).
func (r *RK45) initialStep(dyn dynamo.System, x0, f0 dynamo.State, t0, t1 float64) float64 {
	span := t1 - t0
	n := float64(len(x0))

	var d0, d1 float64
	for i := range x0 {
		scale := r.cfg.AbsTol + math.Abs(x0[i])*r.cfg.RelTol
		d0 += (x0[i] / scale) * (x0[i] / scale)
		d1 += (f0[i] / scale) * (f0[i] / scale)
	}
	d0 = math.Sqrt(d0 / n)
	d1 = math.Sqrt(d1 / n)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	f1 := dyn.Derive(x0.AddScaled(h0, f0), t0+h0)

	var d2 float64
	for i := range x0 {
		scale := r.cfg.AbsTol + math.Abs(x0[i])*r.cfg.RelTol
		e := (f1[i] - f0[i]) / scale
		d2 += e * e
	}
	d2 = math.Sqrt(d2/n) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/(errorOrder+1))
	}

	return math.Min(math.Min(100*h0, h1), math.Min(span, r.maxStep()))
}

func (r *RK45) maxStep() float64 {
	if r.cfg.MaxStep <= 0 {
		return math.Inf(1)
	}
	return r.cfg.MaxStep
}

// Solve integrates dyn from t0 to t1. Without an output step the
// trajectory holds every accepted step; with one it holds a uniform grid
// interpolated from the accepted steps.
func (r *RK45) Solve(ctx context.Context, dyn dynamo.System, x0 dynamo.State, t0, t1 float64) (*dynamo.Trajectory, error) {
	if err := checkProblem(dyn, x0, t0, t1); err != nil {
		return nil, err
	}

	traj := &dynamo.Trajectory{}
	out := newSampler(traj, r.cfg.OutputDt, t0, t1)

	t := t0
	x := x0.Clone()
	f := dyn.Derive(x, t)
	traj.Stats.Evaluations++
	out.start(t, x)

	h := r.cfg.FirstStep
	if h <= 0 {
		h = r.initialStep(dyn, x, f, t0, t1)
		traj.Stats.Evaluations++
	}

	attempts := 0
	for t < t1 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w at t=%.6g: %w", dynamo.ErrContextCanceled, t, ctx.Err())
		default:
		}

		minStep := 10 * (math.Nextafter(t, math.Inf(1)) - t)
		h = math.Min(h, r.maxStep())

		var (
			tNew, step float64
			xNew, fNew dynamo.State
			rejected   bool
		)
		for {
			if attempts >= r.cfg.MaxSteps {
				return nil, diverged(traj.Stats.Accepted, t, x, dynamo.ErrStepBudget)
			}
			if h < minStep {
				return nil, diverged(traj.Stats.Accepted, t, x, dynamo.ErrStepTooSmall)
			}

			tNew = t + h
			if t1-tNew < minStep {
				tNew = t1
			}
			step = tNew - t

			var errNorm float64
			xNew, fNew, errNorm = r.attempt(dyn, x, f, t, step)
			attempts++
			traj.Stats.Evaluations += 6

			if errNorm <= 1 {
				scale := r.scaleFor(errNorm)
				if rejected {
					scale = math.Min(1, scale)
				}
				h = step * scale
				break
			}

			traj.Stats.Rejected++
			rejected = true
			h = step * r.scaleFor(errNorm)
		}

		if !xNew.IsValid() {
			return nil, diverged(traj.Stats.Accepted, tNew, xNew, dynamo.ErrInvalidState)
		}

		out.add(t, x, f, tNew, xNew, fNew)
		t, x, f = tNew, xNew, fNew
		traj.Stats.Accepted++
	}

	return traj, nil
}

func checkProblem(dyn dynamo.System, x0 dynamo.State, t0, t1 float64) error {
	if len(x0) != dyn.StateDim() {
		return fmt.Errorf("%w: state has %d components, system wants %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if !(t1 > t0) || math.IsInf(t1-t0, 0) {
		return &dynamo.ConfigError{Field: "horizon", Message: fmt.Sprintf("must be a finite positive span, got [%g, %g]", t0, t1)}
	}
	if !x0.IsValid() {
		return &dynamo.ConfigError{Field: "init_state", Message: "must be finite"}
	}
	return nil
}

func diverged(step int, t float64, x dynamo.State, reason error) error {
	return &dynamo.DivergenceError{Step: step, Time: t, State: x.Clone(), Reason: reason}
}
