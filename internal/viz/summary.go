package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/metrics"
	"github.com/san-kum/altihold/internal/sim"
)

// RenderSummary formats the outcome of a run for the terminal.
func RenderSummary(title string, s analysis.Summary, stats dynamo.SolverStats, ms map[string]float64, warnings []sim.Warning) string {
	lines := []string{
		Title.Render(title),
		metricLine("samples        ", fmt.Sprintf("%d over %.4g s", s.Samples, s.Horizon)),
		metricLine("solver steps   ", fmt.Sprintf("%d accepted, %d rejected, %d evaluations", stats.Accepted, stats.Rejected, stats.Evaluations)),
		metricLine("final eZ       ", fmt.Sprintf("%.4f", s.FinalEZ)),
		metricLine("max |eZ|       ", fmt.Sprintf("%.4f", s.MaxAbsEZ)),
		metricLine("V final / peak ", fmt.Sprintf("%.4g / %.4g", s.FinalV, s.PeakV)),
		metricLine("mean dV/dt     ", fmt.Sprintf("%.4g ± %.4g", s.MeanVDot, s.StdVDot)),
		metricLine("gain drift     ", fmt.Sprintf("kP %+.4g  kI %+.4g  kD %+.4g", s.Drift.KP, s.Drift.KI, s.Drift.KD)),
	}

	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, metricLine(fmt.Sprintf("%-15s", name), formatMetric(name, ms[name])))
	}

	if len(warnings) == 0 {
		lines = append(lines, StatusOK.Render("no warnings"))
	}
	for _, w := range warnings {
		lines = append(lines, StatusWarn.Render("warning: ")+w.Message)
	}

	return Panel.Render(strings.Join(lines, "\n")) + "\n"
}

func formatMetric(name string, v float64) string {
	switch {
	case name == "settling_time" && v == metrics.NotSettled:
		return "not settled"
	case strings.HasSuffix(name, "fraction") || name == "lyapunov_descent":
		return fmt.Sprintf("%.1f%%", 100*v)
	}
	return fmt.Sprintf("%.4g", v)
}

// RenderFailure formats a run that produced no trajectory.
func RenderFailure(title string, err error) string {
	return Panel.Render(Title.Render(title)+"\n"+StatusError.Render("failed: ")+err.Error()) + "\n"
}
