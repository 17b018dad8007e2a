package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a character grid with 2x4 sub-pixels per cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Bounds is the data window mapped onto a canvas.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// BoundsOf spans xs and ys. Flat ranges are widened to one unit.
func BoundsOf(xs, ys []float64) Bounds {
	b := Bounds{MinX: xs[0], MaxX: xs[0], MinY: ys[0], MaxY: ys[0]}
	for i := range xs {
		b.MinX, b.MaxX = min(b.MinX, xs[i]), max(b.MaxX, xs[i])
		b.MinY, b.MaxY = min(b.MinY, ys[i]), max(b.MaxY, ys[i])
	}
	if b.MaxX == b.MinX {
		b.MaxX = b.MinX + 1
	}
	if b.MaxY == b.MinY {
		b.MinY -= 0.5
		b.MaxY += 0.5
	}
	return b
}

func (c *Canvas) project(b Bounds, x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := int((x - b.MinX) / (b.MaxX - b.MinX) * w)
	py := int(h - (y-b.MinY)/(b.MaxY-b.MinY)*h)
	return px, py
}

// Plot connects consecutive samples with lines.
func (c *Canvas) Plot(xs, ys []float64, b Bounds) {
	for i := 1; i < len(xs) && i < len(ys); i++ {
		x0, y0 := c.project(b, xs[i-1], ys[i-1])
		x1, y1 := c.project(b, xs[i], ys[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// VLine marks a time column over the full height.
func (c *Canvas) VLine(x float64, b Bounds) {
	px, _ := c.project(b, x, b.MinY)
	c.DrawLine(px, 0, px, c.Height*4-1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
