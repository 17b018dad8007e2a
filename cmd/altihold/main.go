package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/observability"
)

var (
	dataDir    string
	configFile string
	preset     string
)

// flagKeys maps simulation flags onto config keys so viper can layer them
// over the preset, the file and the environment.
var flagKeys = map[string]string{
	"mass":        "plant.mass",
	"gravity":     "plant.gravity",
	"target":      "controller.target",
	"u-min":       "controller.u_min",
	"u-max":       "controller.u_max",
	"damping":     "adaptation.damping",
	"z0":          "init_state.z",
	"v0":          "init_state.v",
	"kp":          "init_state.kp",
	"ki":          "init_state.ki",
	"kd":          "init_state.kd",
	"t-end":       "horizon.end",
	"integrator":  "solver.integrator",
	"rtol":        "solver.rtol",
	"atol":        "solver.atol",
	"max-step":    "solver.max_step",
	"max-steps":   "solver.max_steps",
	"output-dt":   "solver.output_dt",
	"fixed-dt":    "solver.fixed_dt",
	"sat-warn":    "warnings.saturation_fraction",
	"log-level":   "logger.level",
	"log-format":  "logger.format",
	"trace-evals": "logger.trace_evaluations",
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "altihold",
		Short:        "adaptive-gain altitude hold simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".altihold", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the closed loop and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd.Flags())
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot altitude after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run signals in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotSignals, "signal", []string{"z", "u", "V", "Vdot"}, "signals to plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the trajectory and diagnostic as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write the trajectory and diagnostic as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render the altitude and lyapunov figures",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "write one signal as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgSignal, "signal", "z", "signal to export")
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "step through a run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep initial gains over a grid",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd.Flags())
	sweepCmd.Flags().StringVar(&sweepKP, "kp-range", "1:4:4", "kp grid lo:hi:n")
	sweepCmd.Flags().StringVar(&sweepKI, "ki-range", "0.1:0.1:1", "ki grid lo:hi:n")
	sweepCmd.Flags().StringVar(&sweepKD, "kd-range", "3:9:4", "kd grid lo:hi:n")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().IntVar(&sweepTop, "top", 10, "rows to print")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file with the defaults",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial state and count divergent runs",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd.Flags())
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcPerturb, "perturb", 5.0, "max perturbation of z0 and v0")
	monteCarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 = time)")
	monteCarloCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd,
		exportPNGCmd, exportSVGCmd, viewCmd, sweepCmd, presetsCmd, initConfigCmd,
		scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSimFlags(fs *pflag.FlagSet) {
	base := config.DefaultConfig()

	fs.StringVar(&configFile, "config", "", "config file path (yaml)")
	fs.StringVar(&preset, "preset", "", "start from a named preset")

	fs.Float64("mass", base.Plant.Mass, "vehicle mass")
	fs.Float64("gravity", base.Plant.Gravity, "gravitational acceleration")
	fs.Float64("target", base.Controller.Target, "target altitude")
	fs.Float64("u-min", base.Controller.UMin, "lower thrust limit")
	fs.Float64("u-max", base.Controller.UMax, "upper thrust limit (0 = derive from mass)")
	fs.Float64("damping", base.Adaptation.Damping, "gain adaptation damping factor")
	fs.Float64("z0", base.InitState.Z, "initial altitude")
	fs.Float64("v0", base.InitState.V, "initial velocity")
	fs.Float64("kp", base.InitState.KP, "initial kp")
	fs.Float64("ki", base.InitState.KI, "initial ki")
	fs.Float64("kd", base.InitState.KD, "initial kd")
	fs.Float64("t-end", base.Horizon.End, "end of the horizon")
	fs.String("integrator", base.Solver.Integrator, "integrator (rk45, dopri5, rk4)")
	fs.Float64("rtol", base.Solver.RelTol, "relative tolerance")
	fs.Float64("atol", base.Solver.AbsTol, "absolute tolerance")
	fs.Float64("max-step", base.Solver.MaxStep, "largest step (0 = unbounded)")
	fs.Int("max-steps", base.Solver.MaxSteps, "step attempt budget")
	fs.Float64("output-dt", base.Solver.OutputDt, "uniform output grid spacing (0 = solver steps)")
	fs.Float64("fixed-dt", base.Solver.FixedDt, "step for rk4")
	fs.Float64("sat-warn", base.Warnings.SaturationFraction, "saturation warning threshold")
	fs.String("log-level", base.Logger.Level, "log level")
	fs.String("log-format", base.Logger.Format, "log format (console, json)")
	fs.Bool("trace-evals", base.Logger.TraceEvaluations, "log every vector field evaluation (switches the log level to debug)")
}

// loadConfig resolves defaults < preset < file < env < flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	base := config.DefaultConfig()
	if preset != "" {
		base = config.GetPreset(preset)
		if base == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	}

	v, err := config.NewViper(base, configFile)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.FromViper(v)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(cfg *config.Config) *zap.Logger {
	return observability.NewStderr(cfg.Logger)
}
