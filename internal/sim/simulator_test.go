package sim

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/dynamo"
)

type countingObserver struct{ calls int }

func (c *countingObserver) OnEvaluate(t float64, x dynamo.State, sig dynamo.Signals) { c.calls++ }

func TestSimulatorRun_Observers(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Horizon.End = 5

	s := New(cfg, nil)
	obs := &countingObserver{}
	s.AddObserver(obs)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if obs.calls != result.Trajectory.Stats.Evaluations {
		t.Errorf("observer saw %d evaluations, solver reports %d", obs.calls, result.Trajectory.Stats.Evaluations)
	}
}

func TestSimulatorRun_OutputGrid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.OutputDt = 0.5

	result, err := New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := result.Trajectory.Len(); got != 201 {
		t.Errorf("expected 201 samples, got %d", got)
	}
	if tEnd, _ := result.Trajectory.Final(); tEnd != 100 {
		t.Errorf("expected final time 100, got %v", tEnd)
	}
	if result.Diagnostics.Len() != result.Trajectory.Len() {
		t.Errorf("diagnostic has %d samples, trajectory %d", result.Diagnostics.Len(), result.Trajectory.Len())
	}
}

func TestSimulatorRun_FixedStep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.Integrator = "rk4"
	cfg.Solver.FixedDt = 0.01
	cfg.Horizon.End = 10

	s := New(cfg, nil)
	obs := &countingObserver{}
	s.AddObserver(obs)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := result.Trajectory.Len(); got != 1001 {
		t.Errorf("expected 1001 samples, got %d", got)
	}
	if obs.calls != 4000 {
		t.Errorf("expected 4 evaluations per step, got %d", obs.calls)
	}
}

func TestSimulatorRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero mass", func(c *config.Config) { c.Plant.Mass = 0 }},
		{"limits reversed", func(c *config.Config) { c.Controller.UMin = 100 }},
		{"empty horizon", func(c *config.Config) { c.Horizon.End = c.Horizon.Start }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			s := New(cfg, nil)
			obs := &countingObserver{}
			s.AddObserver(obs)

			result, err := s.Run(context.Background())
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if result != nil {
				t.Error("rejected config must not produce a result")
			}
			if obs.calls != 0 {
				t.Errorf("vector field evaluated %d times before rejection", obs.calls)
			}
		})
	}
}

func TestSimulatorRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(config.DefaultConfig(), nil).Run(ctx)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestAnalyze_Warnings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Horizon.End = 20

	result, err := New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// the climb starts pinned at u_max, so any saturation trips a zero limit
	cfg.Warnings.SaturationFraction = 0
	a := Analyze(cfg, result.Trajectory)
	if len(a.Warnings) != 1 || a.Warnings[0].Kind != WarnSaturation {
		t.Fatalf("expected one saturation warning, got %+v", a.Warnings)
	}
	if a.Warnings[0].Value <= 0 || a.Warnings[0].Value != a.Metrics["saturation_fraction"] {
		t.Errorf("warning value %v disagrees with metric %v", a.Warnings[0].Value, a.Metrics["saturation_fraction"])
	}

	cfg.Warnings.SaturationFraction = 1
	if a := Analyze(cfg, result.Trajectory); len(a.Warnings) != 0 {
		t.Errorf("expected no warnings at limit 1, got %+v", a.Warnings)
	}
}

func TestEnsemble(t *testing.T) {
	ref := config.GetPreset("reference")
	ref.Horizon.End = 10
	div := config.GetPreset("divergent")
	bad := config.DefaultConfig()
	bad.Plant.Mass = -1

	outcomes, err := NewEnsemble(nil, 2).Run(context.Background(), []*config.Config{ref, div, bad})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].Err != nil || outcomes[0].Result == nil {
		t.Errorf("reference run failed: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, dynamo.ErrDivergence) || outcomes[1].Result != nil {
		t.Errorf("expected divergence, got %v", outcomes[1].Err)
	}
	if !errors.Is(outcomes[2].Err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected config error, got %v", outcomes[2].Err)
	}
	for i, o := range outcomes {
		if o.Config == nil {
			t.Errorf("outcome %d lost its config", i)
		}
	}
}

func TestEnsemble_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEnsemble(nil, 1).Run(ctx, []*config.Config{config.DefaultConfig()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSimulatorRun_TraceEvaluations(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Horizon.End = 1
	cfg.Logger.TraceEvaluations = true

	t.Run("debug logger records every evaluation", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		result, err := New(cfg, zap.New(core)).Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		evals := logs.FilterLoggerName("eval").Len()
		if evals != result.Trajectory.Stats.Evaluations {
			t.Errorf("logged %d evaluations, solver reports %d", evals, result.Trajectory.Stats.Evaluations)
		}
	})

	t.Run("info logger warns that tracing is silent", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		if _, err := New(cfg, zap.New(core)).Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if logs.FilterMessageSnippet("evaluation tracing needs the debug level").Len() != 1 {
			t.Error("expected a warning about the log level")
		}
	})
}
