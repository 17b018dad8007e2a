package main

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/altihold/internal/automation"
	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/observability"
	"github.com/san-kum/altihold/internal/storage"
)

var (
	mcTrials  int
	mcPerturb float64
	mcSeed    int64
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log := observability.NewStderr(config.DefaultConfig().Logger)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tFINAL eZ\tWARNINGS\tRUN")
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t%s\n", name, r.Step.Preset, divergenceReason(r.Err))
			continue
		}

		runID := "-"
		if r.Step.Save {
			if err := st.Init(); err != nil {
				return err
			}
			if runID, err = st.Save(r.Step.Preset, r.Config, r.Result); err != nil {
				return fmt.Errorf("save %s: %w", name, err)
			}
			log.Info("run saved", zap.String("step", name), zap.String("run_id", runID))
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%d\t%s\n", name, r.Step.Preset, r.Result.Summary.FinalEZ, len(r.Result.Warnings), runID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(base)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Workers:      sweepWorkers,
		Seed:         mcSeed,
	}, log)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%d trials: %d stable, %d diverged\n", len(results), stable, unstable)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tZ0\tV0\tFINAL eZ")
	for _, r := range results {
		if !r.Stable {
			fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%s\n", r.TrialID, r.Z0, r.V0, divergenceReason(r.Err))
			continue
		}
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.4f\n", r.TrialID, r.Z0, r.V0, r.FinalEZ)
	}
	return w.Flush()
}
