package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/altihold/internal/dynamo"
)

func TestRK4_EnergyConservation(t *testing.T) {
	integrator := NewRK4(dynamo.DefaultConfig())
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK4 energy drift too high: %e", drift)
	}
}

func TestRK4_Solve(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.FixedDt = 0.01
	integrator := NewRK4(cfg)

	traj, err := integrator.Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, 0, 10)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if traj.Len() != 1001 {
		t.Errorf("Len() = %d, want 1001", traj.Len())
	}
	tEnd, x := traj.Final()
	if tEnd != 10 {
		t.Errorf("final time = %v, want exactly 10", tEnd)
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-6 {
		t.Errorf("x(10) = %v, want %v", x[0], math.Cos(10))
	}
}

func TestRK4_Divergence(t *testing.T) {
	_, err := NewRK4(dynamo.DefaultConfig()).Solve(context.Background(), &blowUp{}, dynamo.State{1}, 0, 2)
	if !errors.Is(err, dynamo.ErrDivergence) {
		t.Fatalf("err = %v, want ErrDivergence", err)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestRK4_StepBudget(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.MaxSteps = 10
	_, err := NewRK4(cfg).Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, 0, 10)
	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Errorf("err = %v, want ErrStepBudget", err)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range List() {
		s, err := New(name, dynamo.DefaultConfig())
		if err != nil || s == nil {
			t.Errorf("New(%q) = %v, %v", name, s, err)
		}
	}
	if _, err := New("euler", dynamo.DefaultConfig()); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if !Known("dopri5") || Known("verlet") {
		t.Error("Known() disagrees with the registry")
	}
}
