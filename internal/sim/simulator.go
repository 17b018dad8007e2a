package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/control"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/integrators"
	"github.com/san-kum/altihold/internal/metrics"
	"github.com/san-kum/altihold/internal/models"
	"github.com/san-kum/altihold/internal/observability"
	"github.com/san-kum/altihold/internal/physics"
)

type Simulator struct {
	cfg       *config.Config
	log       *zap.Logger
	observers []dynamo.Observer
}

func New(cfg *config.Config, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		cfg:       cfg,
		log:       log,
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() *config.Config { return s.cfg }

// BuildLoop assembles the closed loop described by cfg.
func BuildLoop(cfg *config.Config) *models.Altitude {
	plant := physics.NewPointMass(cfg.Plant.Mass, cfg.Plant.Gravity)
	uMin, uMax := cfg.ActuatorLimits()
	law := control.NewPID(cfg.Controller.Target, uMin, uMax)
	return models.NewAltitude(plant, law, control.Adaptation{Damping: cfg.Adaptation.Damping})
}

// Run validates the configuration, integrates the augmented state over
// the horizon and diagnoses the result. A diverged run returns an error
// matching dynamo.ErrDivergence and no trajectory.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.cfg
	if err := cfg.Validate(); err != nil {
		s.log.Error("configuration rejected", zap.Error(err))
		return nil, err
	}

	loop := BuildLoop(cfg)
	for _, o := range s.observers {
		loop.AddObserver(o)
	}
	if cfg.Logger.TraceEvaluations {
		if !s.log.Core().Enabled(zap.DebugLevel) {
			s.log.Warn("evaluation tracing needs the debug level; evaluations will not be logged")
		}
		loop.AddObserver(observability.NewEvaluationLogger(s.log))
	}

	solver, err := integrators.New(cfg.Solver.Integrator, cfg.SolverOptions())
	if err != nil {
		return nil, &dynamo.ConfigError{Field: "solver.integrator", Message: err.Error()}
	}

	s.log.Info("run started",
		zap.String("integrator", cfg.Solver.Integrator),
		zap.Float64s("x0", cfg.InitialState()),
		zap.Any("params", loop.Params()),
		zap.Float64("t_end", cfg.Horizon.End),
	)

	start := time.Now()
	traj, err := solver.Solve(ctx, loop, cfg.InitialState(), cfg.Horizon.Start, cfg.Horizon.End)
	elapsed := time.Since(start)

	if err != nil {
		var div *dynamo.DivergenceError
		if errors.As(err, &div) {
			s.log.Error("integration diverged",
				zap.Int("step", div.Step),
				zap.Float64("t", div.Time),
				zap.Float64s("state", div.State),
				zap.NamedError("reason", div.Reason),
			)
		}
		return nil, fmt.Errorf("simulate: %w", err)
	}

	result := &Result{
		Trajectory: traj,
		Analysis:   *Analyze(cfg, traj),
		Elapsed:    elapsed,
	}

	for _, w := range result.Warnings {
		s.log.Warn(w.Message, zap.String("kind", w.Kind), zap.Float64("value", w.Value), zap.Float64("limit", w.Limit))
	}
	s.log.Info("run finished",
		zap.Int("samples", traj.Len()),
		zap.Int("accepted", traj.Stats.Accepted),
		zap.Int("rejected", traj.Stats.Rejected),
		zap.Int("evaluations", traj.Stats.Evaluations),
		zap.Float64("final_ez", result.Summary.FinalEZ),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// Analyze recomputes the diagnostic of traj through a fresh loop built
// from cfg, collects the standard metrics and raises warnings.
func Analyze(cfg *config.Config, traj *dynamo.Trajectory) *Analysis {
	loop := BuildLoop(cfg)
	ms := metrics.Standard(loop.Law.UMin, loop.Law.UMax)

	d := analysis.Diagnose(traj, loop, ms...)
	a := &Analysis{
		Diagnostics: d,
		Summary:     analysis.Summarize(d),
		Metrics:     metrics.Values(ms),
	}
	a.Summary.Drift = analysis.GainDrift(traj)

	limit := cfg.Warnings.SaturationFraction
	if frac := a.Metrics["saturation_fraction"]; frac > limit {
		a.Warnings = append(a.Warnings, Warning{
			Kind:    WarnSaturation,
			Message: fmt.Sprintf("control pinned at a limit for %.0f%% of the horizon", 100*frac),
			Value:   frac,
			Limit:   limit,
		})
	}

	return a
}
