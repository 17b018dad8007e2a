package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/dynamo"
)

type channel struct {
	name   string
	values []float64
}

// Scrubber is a Bubble Tea model for stepping through a finished run.
type Scrubber struct {
	title      string
	traj       *dynamo.Trajectory
	diag       *analysis.Diagnostics
	uMin, uMax float64
	channels   []channel
	selected   int
	cursor     int
	width      int
	height     int
}

func NewScrubber(title string, traj *dynamo.Trajectory, d *analysis.Diagnostics, uMin, uMax float64) Scrubber {
	return Scrubber{
		title: title,
		traj:  traj,
		diag:  d,
		uMin:  uMin,
		uMax:  uMax,
		channels: []channel{
			{"altitude z", traj.Column(dynamo.IdxZ)},
			{"velocity v", traj.Column(dynamo.IdxV)},
			{"thrust u", d.U},
			{"V", d.V},
			{"dV/dt", d.VDot},
			{"kP", traj.Column(dynamo.IdxKP)},
		},
		width:  80,
		height: 24,
	}
}

func (m Scrubber) Init() tea.Cmd { return nil }

// Cursor is the sample index under the cursor.
func (m Scrubber) Cursor() int { return m.cursor }

// Channel is the name of the plotted signal.
func (m Scrubber) Channel() string { return m.channels[m.selected].name }

func (m Scrubber) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		n := m.traj.Len()
		page := max(1, n/20)
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l":
			m.cursor++
		case "left", "h":
			m.cursor--
		case "pgdown", "L":
			m.cursor += page
		case "pgup", "H":
			m.cursor -= page
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = n - 1
		case "tab":
			m.selected = (m.selected + 1) % len(m.channels)
		case "shift+tab":
			m.selected = (m.selected + len(m.channels) - 1) % len(m.channels)
		case "t":
			m.cursor = m.nearest(m.traj.Times[0] + 0.5*(m.traj.Times[n-1]-m.traj.Times[0]))
		}
		m.cursor = max(0, min(m.cursor, n-1))
	}
	return m, nil
}

// nearest returns the first sample at or after t.
func (m Scrubber) nearest(t float64) int {
	i := sort.SearchFloat64s(m.traj.Times, t)
	return min(i, m.traj.Len()-1)
}

func (m Scrubber) View() string {
	if m.traj.Len() == 0 {
		return "empty trajectory\n"
	}

	ch := m.channels[m.selected]
	plotW := max(20, m.width-34)
	plotH := max(6, m.height-10)

	b := BoundsOf(m.traj.Times, ch.values)
	canvas := NewCanvas(plotW, plotH)
	canvas.Plot(m.traj.Times, ch.values, b)
	canvas.VLine(m.traj.Times[m.cursor], b)

	plot := lipgloss.JoinVertical(lipgloss.Left,
		Title.Render(ch.name)+Subtle.Render(fmt.Sprintf("  [%.4g, %.4g]", b.MinY, b.MaxY)),
		PlotStyle.Render(strings.TrimRight(canvas.String(), "\n")),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, Panel.Render(plot), Panel.Render(m.readout()))

	progress := 1.0
	if span := m.traj.Times[m.traj.Len()-1] - m.traj.Times[0]; span > 0 {
		progress = (m.traj.Times[m.cursor] - m.traj.Times[0]) / span
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		Title.Render(m.title),
		body,
		ProgressBar(progress, plotW)+Subtle.Render(fmt.Sprintf(" %d/%d", m.cursor+1, m.traj.Len())),
		MetricLabel.Render("dV/dt ")+SparklineChart(m.diag.VDot, plotW),
		KeyHint.Render("←/→ step  pgup/pgdn jump  home/end  tab signal  t midpoint  q quit"),
	) + "\n"
}

func (m Scrubber) readout() string {
	i := m.cursor
	x := m.traj.States[i]
	sig := m.diag.At(i)

	status := StatusOK.Render("free")
	if sig.Saturated(m.uMin, m.uMax) {
		status = StatusWarn.Render("saturated")
	}
	descent := StatusOK.Render("descending")
	if sig.VDot >= 0 {
		descent = StatusWarn.Render("rising")
	}

	lines := []string{
		metricLine("t   ", fmt.Sprintf("%10.4f", m.traj.Times[i])),
		metricLine("z   ", fmt.Sprintf("%10.4f", x[dynamo.IdxZ])),
		metricLine("v   ", fmt.Sprintf("%10.4f", x[dynamo.IdxV])),
		metricLine("eI  ", fmt.Sprintf("%10.4f", x[dynamo.IdxEI])),
		metricLine("kP  ", fmt.Sprintf("%10.6f", x[dynamo.IdxKP])),
		metricLine("kI  ", fmt.Sprintf("%10.6f", x[dynamo.IdxKI])),
		metricLine("kD  ", fmt.Sprintf("%10.6f", x[dynamo.IdxKD])),
		"",
		metricLine("u   ", fmt.Sprintf("%10.4f", sig.U)) + " " + status,
		metricLine("V   ", fmt.Sprintf("%10.4g", sig.V)),
		metricLine("dV  ", fmt.Sprintf("%10.4g", sig.VDot)) + " " + descent,
	}
	return strings.Join(lines, "\n")
}
