package export

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// SeriesToSVG draws the series as polylines on shared axes. Series with
// fewer than two points are skipped.
func SeriesToSVG(series []Series, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	drawn := 0
	for _, s := range series {
		if len(s.X) < 2 || len(s.X) != len(s.Y) {
			continue
		}
		drawn++
		for i := range s.X {
			minX, maxX = math.Min(minX, s.X[i]), math.Max(maxX, s.X[i])
			minY, maxY = math.Min(minY, s.Y[i]), math.Max(maxY, s.Y[i])
		}
	}
	if drawn == 0 {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	project := func(x, y float64) (float64, float64) {
		return (x - minX) / rangeX * float64(width), float64(height) - (y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minY < 0 && maxY > 0 {
		_, y0 := project(minX, 0)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-width="1"/>
`, y0, width, y0))
	}

	for k, s := range series {
		if len(s.X) < 2 || len(s.X) != len(s.Y) {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, hexColor(s.Color)))
		for i := range s.X {
			x, y := project(s.X[i], s.Y[i])
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*k, hexColor(s.Color), s.Name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// FigureToSVG is SeriesToSVG for every series of fig.
func FigureToSVG(fig Figure, width, height int) string {
	return SeriesToSVG(fig.Series, width, height)
}
