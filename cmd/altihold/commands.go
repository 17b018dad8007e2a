package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/export"
	"github.com/san-kum/altihold/internal/optim"
	"github.com/san-kum/altihold/internal/sim"
	"github.com/san-kum/altihold/internal/storage"
	"github.com/san-kum/altihold/internal/viz"
)

var (
	noSave      bool
	showPlot    bool
	plotSignals []string
	outDir      string
	outFile     string
	svgSignal   string

	sweepKP, sweepKI, sweepKD string
	sweepWorkers, sweepTop    int
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := sim.New(cfg, log).Run(ctx)
	if err != nil {
		fmt.Print(viz.RenderFailure("run", err))
		return err
	}

	fmt.Print(viz.RenderSummary("run", result.Summary, result.Trajectory.Stats, result.Metrics, result.Warnings))

	if showPlot {
		fmt.Println(asciigraph.Plot(result.Trajectory.Column(dynamo.IdxZ),
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("altitude z"),
		))
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(preset, cfg, result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	log.Info("run saved", zap.String("run_id", runID), zap.String("dir", dataDir))
	fmt.Printf("saved: %s\n", runID)
	return nil
}

// storedRun is a stored run with its analysis recomputed from the states.
type storedRun struct {
	*storage.Run
	*sim.Analysis
}

func openRun(ref string) (*storedRun, error) {
	run, err := storage.New(dataDir).Open(ref)
	if err != nil {
		return nil, err
	}
	return &storedRun{Run: run, Analysis: sim.Analyze(run.Config, run.Trajectory)}, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tINTEGRATOR\tHORIZON\tSAMPLES\tFINAL eZ\tWARNINGS")
	for _, r := range runs {
		p := r.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%d\t%.4f\t%d\n",
			r.ID, p, r.Integrator, r.Horizon[0], r.Horizon[1], r.Samples, r.Summary.FinalEZ, len(r.Warnings))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s (%s)", run.Meta.ID, run.Meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Print(viz.RenderSummary(title, run.Summary, run.Trajectory.Stats, run.Metrics, run.Warnings))
	fmt.Println(viz.Subtle.Render("error portrait (eZ vs eV)"))
	fmt.Print(analysis.ErrorPortrait(run.Diagnostics).ASCII(60, 20))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}

	for _, name := range plotSignals {
		s, err := export.Signal(name, run.Trajectory, run.Diagnostics)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(s.Y,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, run.Trajectory, run.Diagnostics)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, run.Run, run.Diagnostics, run.Metrics)
}

func exportPNG(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}
	paths, err := export.SavePNGs(outDir, export.Figures(run.Trajectory, run.Diagnostics))
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}
	s, err := export.Signal(svgSignal, run.Trajectory, run.Diagnostics)
	if err != nil {
		return err
	}
	svg := export.SeriesToSVG([]export.Series{s}, 800, 400)

	if outFile == "" {
		_, err = fmt.Print(svg)
		return err
	}
	return os.WriteFile(outFile, []byte(svg), 0644)
}

func viewRun(cmd *cobra.Command, args []string) error {
	run, err := openRun(args[0])
	if err != nil {
		return err
	}
	uMin, uMax := run.Config.ActuatorLimits()
	m := viz.NewScrubber(run.Meta.ID, run.Trajectory, run.Diagnostics, uMin, uMax)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(base)
	defer log.Sync() //nolint:errcheck

	kp, err := parseRange(sweepKP)
	if err != nil {
		return fmt.Errorf("kp-range: %w", err)
	}
	ki, err := parseRange(sweepKI)
	if err != nil {
		return fmt.Errorf("ki-range: %w", err)
	}
	kd, err := parseRange(sweepKD)
	if err != nil {
		return fmt.Errorf("kd-range: %w", err)
	}

	grid := optim.NewGridSearch(kp, ki, kd)
	grid.Workers = sweepWorkers

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d gain combinations\n\n", grid.Size())
	points, err := grid.Search(ctx, base, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tKD\tFINAL eZ\tSETTLING\tSATURATION\tSTATUS")
	for i, p := range points {
		if sweepTop > 0 && i >= sweepTop {
			break
		}
		if p.Diverged() {
			fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t-\t-\t-\t%s\n", p.KP, p.KI, p.KD, divergenceReason(p.Err))
			continue
		}
		settling := "not settled"
		if p.Settling >= 0 {
			settling = fmt.Sprintf("%.2fs", p.Settling)
		}
		status := "ok"
		if p.Warnings > 0 {
			status = "warning"
		}
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4f\t%s\t%.1f%%\t%s\n",
			p.KP, p.KI, p.KD, p.FinalEZ, settling, 100*p.Saturation, status)
	}
	return w.Flush()
}

func divergenceReason(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return "diverged: " + msg
}

// parseRange reads "lo:hi:n" or a single value.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		return []float64{v}, nil
	case 3:
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("need at least one point, got %d", n)
		}
		return optim.Linspace(lo, hi, n), nil
	}
	return nil, fmt.Errorf("expected lo:hi:n, got %q", s)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
