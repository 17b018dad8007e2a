package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"reference", NewState(10, 0, 0, 2.0, 0.1, 6.0), true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Layout(t *testing.T) {
	x := NewState(1, 2, 3, 4, 5, 6)
	if len(x) != StateDim {
		t.Fatalf("len = %d, want %d", len(x), StateDim)
	}
	for i, idx := range []int{IdxZ, IdxV, IdxEI, IdxKP, IdxKI, IdxKD} {
		if x[idx] != float64(i+1) {
			t.Errorf("x[%d] = %v, want %v", idx, x[idx], i+1)
		}
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	step := a.AddScaled(2, b)
	if step[0] != 9 || step[1] != 12 || step[2] != 15 {
		t.Errorf("AddScaled failed: got %v", step)
	}

	c := a.Clone()
	c[0] = 100
	if a[0] != 1 {
		t.Error("Clone shares storage")
	}
}

func TestSignals_Saturated(t *testing.T) {
	tests := []struct {
		u    float64
		want bool
	}{
		{0, true},
		{78.48, true},
		{19.62, false},
	}

	for _, tt := range tests {
		if got := (Signals{U: tt.u}).Saturated(0, 78.48); got != tt.want {
			t.Errorf("Saturated(u=%v) = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestTrajectory(t *testing.T) {
	tr := &Trajectory{
		Times:  []float64{0, 1},
		States: []State{NewState(10, 0, 0, 2, 0.1, 6), NewState(20, 5, 15, 2, 0.1, 6)},
	}

	tEnd, x := tr.Final()
	if tEnd != 1 || x[IdxZ] != 20 {
		t.Errorf("Final() = %v, %v", tEnd, x)
	}

	z := tr.Column(IdxZ)
	if len(z) != 2 || z[0] != 10 || z[1] != 20 {
		t.Errorf("Column(IdxZ) = %v", z)
	}

	if _, x := (&Trajectory{}).Final(); x != nil {
		t.Error("empty trajectory should have no final state")
	}
}

func TestDivergenceError(t *testing.T) {
	err := error(&DivergenceError{Step: 3, Time: 1.5, Reason: ErrStepTooSmall})

	if !errors.Is(err, ErrDivergence) {
		t.Error("DivergenceError must match ErrDivergence")
	}
	if !errors.Is(err, ErrStepTooSmall) {
		t.Error("DivergenceError must unwrap to its reason")
	}
	if errors.Is(err, ErrStepBudget) {
		t.Error("DivergenceError matched an unrelated reason")
	}

	var cfgErr error = &ConfigError{Field: "plant.mass", Message: "must be positive"}
	if !errors.Is(cfgErr, ErrInvalidConfig) {
		t.Error("ConfigError must match ErrInvalidConfig")
	}
	if errors.Is(cfgErr, ErrDivergence) {
		t.Error("ConfigError must not match ErrDivergence")
	}
}
