package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Portrait is a curve in a 2D phase plane.
type Portrait struct {
	XLabel, YLabel string
	X, Y           []float64
}

// ErrorPortrait traces the tracking errors (eZ, eV) of a diagnostic. A
// settling loop spirals into the origin.
func ErrorPortrait(d *Diagnostics) *Portrait {
	return &Portrait{XLabel: "eZ", YLabel: "eV", X: d.EZ, Y: d.EV}
}

const (
	markPath   = '·'
	markStart  = 'o'
	markEnd    = '*'
	markOrigin = '+'
)

// ASCII draws the portrait on a width x height character grid. The
// visible window always contains the origin, which is marked '+'; the
// first sample is 'o' and the last '*'.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.X) == 0 || len(p.X) != len(p.Y) || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := min(floats.Min(p.X), 0), max(floats.Max(p.X), 0)
	minY, maxY := min(floats.Min(p.Y), 0), max(floats.Max(p.Y), 0)
	if maxX == minX {
		minX, maxX = minX-1, maxX+1
	}
	if maxY == minY {
		minY, maxY = minY-1, maxY+1
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	cell := func(x, y float64) (int, int) {
		c := int((x - minX) / (maxX - minX) * float64(width-1))
		r := height - 1 - int((y-minY)/(maxY-minY)*float64(height-1))
		return r, c
	}
	put := func(x, y float64, mark rune) {
		r, c := cell(x, y)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = mark
		}
	}

	for i := range p.X {
		put(p.X[i], p.Y[i], markPath)
	}
	put(0, 0, markOrigin)
	put(p.X[0], p.Y[0], markStart)
	put(p.X[len(p.X)-1], p.Y[len(p.Y)-1], markEnd)

	var sb strings.Builder
	sb.WriteString(p.YLabel + "\n")
	for _, row := range grid {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat(" ", width-len(p.XLabel)) + p.XLabel + "\n")
	return sb.String()
}
