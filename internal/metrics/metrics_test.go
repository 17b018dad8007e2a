package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/altihold/internal/dynamo"
)

func feed(m dynamo.Metric, times []float64, sigs []dynamo.Signals) {
	for i, t := range times {
		m.Observe(nil, sigs[i], t)
	}
}

func TestSaturation_TimeWeighted(t *testing.T) {
	m := NewSaturation(0, 10)

	times := []float64{0, 1, 2, 4}
	sigs := []dynamo.Signals{{U: 10}, {U: 10}, {U: 5}, {U: 5}}

	feed(m, times, sigs)

	// trapezoid: [0,1] fully pinned, [1,2] half, [2,4] free
	want := (1.0 + 0.5) / 4.0
	if got := m.Value(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Value() = %v, want %v", got, want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSaturation_BothLimits(t *testing.T) {
	tests := []struct {
		name string
		u    float64
		want float64
	}{
		{"lower", 0, 1},
		{"upper", 78.48, 1},
		{"inside", 19.62, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSaturation(0, 78.48)
			m.Observe(nil, dynamo.Signals{U: tt.u}, 0)
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	feed(m, []float64{0, 2}, []dynamo.Signals{{U: 4}, {U: 8}})

	if got := m.Value(); math.Abs(got-6) > 1e-12 {
		t.Errorf("Value() = %v, want 6", got)
	}
}

func TestSettling(t *testing.T) {
	tests := []struct {
		name string
		ez   []float64
		want float64
	}{
		{"inside from start", []float64{1, 2, 0}, 0},
		{"enters once", []float64{20, 10, 4, 1}, 2},
		{"leaves and returns", []float64{20, 4, 7, 3, 1}, 3},
		{"never settles", []float64{20, 10, 8, 6}, NotSettled},
		{"leaves at the end", []float64{3, 2, 9}, NotSettled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSettling(5)
			for i, e := range tt.ez {
				m.Observe(nil, dynamo.Signals{EZ: -e}, float64(i))
			}
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}

	if NewSettling(5).Value() != NotSettled {
		t.Error("empty metric must report NotSettled")
	}
}

func TestDescent(t *testing.T) {
	m := NewDescent()
	feed(m, []float64{0, 1, 2, 3}, []dynamo.Signals{{VDot: -1}, {VDot: -2}, {VDot: 1}, {VDot: 1}})

	// [0,1] descending, [1,2] half, [2,3] ascending
	want := 1.5 / 3.0
	if got := m.Value(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Value() = %v, want %v", got, want)
	}
}

func TestStandard(t *testing.T) {
	ms := Standard(0, 10)
	vals := Values(ms)

	for _, name := range []string{"saturation_fraction", "control_effort", "settling_time", "lyapunov_descent"} {
		if _, ok := vals[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
	if len(vals) != len(ms) {
		t.Errorf("duplicate metric names: %v", vals)
	}
}
