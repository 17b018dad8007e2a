package dynamo

import (
	"context"
	"math"
)

// Augmented state layout. The order is fixed and every solver treats all
// six components as integration variables.
const (
	IdxZ = iota
	IdxV
	IdxEI
	IdxKP
	IdxKI
	IdxKD

	StateDim
)

type State []float64

func NewState(z, v, eI, kP, kI, kD float64) State {
	return State{z, v, eI, kP, kI, kD}
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AddScaled returns s + h*d.
func (s State) AddScaled(h float64, d State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + h*d[i]
	}
	return result
}

// Signals are the instantaneous quantities derived from one state sample.
// They are recomputed on demand and never stored inside the state.
type Signals struct {
	EZ   float64 // altitude error zDes - z
	EV   float64 // velocity error -v
	URaw float64 // PID output before clamping
	U    float64 // clamped actuator command
	V    float64 // Lyapunov candidate
	VDot float64 // Lyapunov candidate time-derivative
}

// Saturated reports whether the command sits on either actuator limit.
func (s Signals) Saturated(uMin, uMax float64) bool {
	return s.U <= uMin || s.U >= uMax
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Evaluator recomputes the derived signals of a state sample.
type Evaluator interface {
	Evaluate(x State) Signals
}

// Solver advances a System from t0 to t1.
type Solver interface {
	Solve(ctx context.Context, dyn System, x0 State, t0, t1 float64) (*Trajectory, error)
}

// Observer is notified on every vector-field evaluation, including the
// trial stages an adaptive solver later discards.
type Observer interface {
	OnEvaluate(t float64, x State, sig Signals)
}

type Metric interface {
	Name() string
	Observe(x State, sig Signals, t float64)
	Value() float64
	Reset()
}

// Config controls a solver run.
type Config struct {
	RelTol    float64
	AbsTol    float64
	MaxStep   float64
	FirstStep float64
	MaxSteps  int
	OutputDt  float64
	FixedDt   float64
}

func DefaultConfig() Config {
	return Config{
		RelTol:   1e-3,
		AbsTol:   1e-6,
		MaxStep:  math.Inf(1),
		MaxSteps: 200000,
		FixedDt:  0.01,
	}
}

// SolverStats counts the work a solver did for one trajectory.
type SolverStats struct {
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
	Evaluations int `json:"evaluations"`
}

// Trajectory is the ordered time grid and the state at every sample.
// It is read-only once returned by a Solver.
type Trajectory struct {
	Times  []float64
	States []State
	Stats  SolverStats
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Final returns the last sample.
func (tr *Trajectory) Final() (float64, State) {
	n := len(tr.Times)
	if n == 0 {
		return 0, nil
	}
	return tr.Times[n-1], tr.States[n-1]
}

// Column extracts one state component across all samples.
func (tr *Trajectory) Column(idx int) []float64 {
	col := make([]float64, len(tr.States))
	for i, s := range tr.States {
		if idx < len(s) {
			col[i] = s[idx]
		}
	}
	return col
}
