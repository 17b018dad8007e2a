package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/metrics"
	"github.com/san-kum/altihold/internal/sim"
)

func sampleScrubber() Scrubber {
	traj := &dynamo.Trajectory{
		Times: []float64{0, 1, 2, 3},
		States: []dynamo.State{
			dynamo.NewState(10, 0, 0, 2, 0.1, 6),
			dynamo.NewState(20, 10, 85, 2, 0.1, 6),
			dynamo.NewState(60, 20, 160, 2, 0.1, 6),
			dynamo.NewState(95, 5, 200, 2, 0.1, 6),
		},
	}
	d := &analysis.Diagnostics{
		Times: traj.Times,
		EZ:    []float64{90, 80, 40, 5},
		EV:    []float64{0, -10, -20, -5},
		U:     []float64{78.48, 78.48, 0, 30},
		V:     []float64{4050, 7000, 13800, 20000},
		VDot:  []float64{0, 3000, 1000, -50},
	}
	return NewScrubber("reference", traj, d, 0, 78.48)
}

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func TestScrubber_Navigation(t *testing.T) {
	var m tea.Model = sampleScrubber()

	right := tea.KeyMsg{Type: tea.KeyRight}
	left := tea.KeyMsg{Type: tea.KeyLeft}

	m = press(m, right, right)
	if got := m.(Scrubber).Cursor(); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}

	m = press(m, right, right, right)
	if got := m.(Scrubber).Cursor(); got != 3 {
		t.Errorf("cursor should stop at the last sample, got %d", got)
	}

	m = press(m, left, left, left, left, left)
	if got := m.(Scrubber).Cursor(); got != 0 {
		t.Errorf("cursor should stop at the first sample, got %d", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	if got := m.(Scrubber).Cursor(); got != 3 {
		t.Errorf("end: cursor = %d, want 3", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.(Scrubber).Channel(); got != "velocity v" {
		t.Errorf("tab: channel = %q", got)
	}
}

func TestScrubber_Quit(t *testing.T) {
	_, cmd := sampleScrubber().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestScrubber_View(t *testing.T) {
	m, _ := sampleScrubber().Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})

	view := m.View()
	for _, want := range []string{"reference", "altitude z", "saturated", "2/4"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestCanvas_Plot(t *testing.T) {
	c := NewCanvas(10, 4)
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	c.Plot(xs, ys, BoundsOf(xs, ys))

	out := c.String()
	if strings.Count(out, "\n") != 4 {
		t.Errorf("expected 4 rows, got %q", out)
	}
	if c.Grid[3][0] == brailleBlank || c.Grid[0][9] == brailleBlank {
		t.Error("diagonal should touch both corners")
	}
}

func TestBoundsOf_Flat(t *testing.T) {
	b := BoundsOf([]float64{1, 1}, []float64{5, 5})
	if b.MaxX <= b.MinX || b.MaxY <= b.MinY {
		t.Errorf("flat bounds not widened: %+v", b)
	}
}

func TestRenderSummary(t *testing.T) {
	s := analysis.Summary{Samples: 10, Horizon: 100, FinalEZ: 0.25}
	ms := map[string]float64{"settling_time": metrics.NotSettled, "saturation_fraction": 0.4}
	warn := []sim.Warning{{Kind: sim.WarnSaturation, Message: "control pinned"}}

	out := RenderSummary("run", s, dynamo.SolverStats{Accepted: 9}, ms, warn)
	for _, want := range []string{"0.2500", "not settled", "40.0%", "control pinned", "9 accepted"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	if out := RenderSummary("run", s, dynamo.SolverStats{}, nil, nil); !strings.Contains(out, "no warnings") {
		t.Error("expected no-warnings line")
	}

	if out := RenderFailure("run", errors.New("boom")); !strings.Contains(out, "boom") {
		t.Error("failure should include the error")
	}
}
