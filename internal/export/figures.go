// Package export renders trajectories and their diagnostics to files.
package export

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/dynamo"
)

// Series is one named curve.
type Series struct {
	Name  string
	X, Y  []float64
	Color color.RGBA
}

// Figure groups the curves drawn on one set of axes.
type Figure struct {
	Name   string
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

var signalIndex = map[string]int{
	"z": dynamo.IdxZ, "v": dynamo.IdxV, "e_i": dynamo.IdxEI,
	"kp": dynamo.IdxKP, "ki": dynamo.IdxKI, "kd": dynamo.IdxKD,
}

// Signals lists the names accepted by Signal.
func Signals() []string {
	names := []string{"e_z", "e_v", "u", "V", "Vdot"}
	for name := range signalIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signal extracts a state component or a diagnostic signal over time.
func Signal(name string, traj *dynamo.Trajectory, d *analysis.Diagnostics) (Series, error) {
	s := Series{Name: name, X: traj.Times, Color: palette[0]}
	if idx, ok := signalIndex[name]; ok {
		s.Y = traj.Column(idx)
		return s, nil
	}

	switch name {
	case "e_z":
		s.Y = d.EZ
	case "e_v":
		s.Y = d.EV
	case "u":
		s.Y = d.U
	case "V":
		s.Y = d.V
	case "Vdot":
		s.Y = d.VDot
	default:
		return Series{}, fmt.Errorf("unknown signal %q (have %v)", name, Signals())
	}
	return s, nil
}

// Figures returns the two standard figures of a run: altitude and
// velocity, then the Lyapunov candidate and its rate.
func Figures(traj *dynamo.Trajectory, d *analysis.Diagnostics) []Figure {
	z := Series{Name: "altitude z", X: traj.Times, Y: traj.Column(dynamo.IdxZ), Color: palette[0]}
	v := Series{Name: "velocity v", X: traj.Times, Y: traj.Column(dynamo.IdxV), Color: palette[1]}
	vv := Series{Name: "V", X: d.Times, Y: d.V, Color: palette[2]}
	vdot := Series{Name: "dV/dt", X: d.Times, Y: d.VDot, Color: palette[3]}

	return []Figure{
		{
			Name:   "altitude",
			Title:  "Altitude and velocity",
			XLabel: "time (s)",
			YLabel: "z (m), v (m/s)",
			Series: []Series{z, v},
		},
		{
			Name:   "lyapunov",
			Title:  "Lyapunov candidate",
			XLabel: "time (s)",
			YLabel: "V, dV/dt",
			Series: []Series{vv, vdot},
		},
	}
}
