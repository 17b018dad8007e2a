package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset plus dotted config overrides such as
// "adaptation.damping: 0.001".
type ScenarioStep struct {
	Name      string         `yaml:"name"`
	Preset    string         `yaml:"preset"`
	Overrides map[string]any `yaml:"overrides"`
	Save      bool           `yaml:"save"`
}

// StepResult pairs a step with its outcome. Err is set for invalid or
// divergent runs; the scenario carries on with the next step.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
	Err    error
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// StepConfig builds the validated config of a step.
func StepConfig(step ScenarioStep) (*config.Config, error) {
	base := config.DefaultConfig()
	if step.Preset != "" {
		base = config.GetPreset(step.Preset)
		if base == nil {
			return nil, fmt.Errorf("unknown preset %q", step.Preset)
		}
	}

	v, err := config.NewViper(base, "")
	if err != nil {
		return nil, err
	}
	for key, val := range step.Overrides {
		v.Set(key, val)
	}
	return config.FromViper(v)
}

// RunScenario executes all steps in order. Only context cancellation
// stops it early.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("name", step.Name),
		)

		sr := StepResult{Step: step}
		cfg, err := StepConfig(step)
		if err != nil {
			sr.Err = fmt.Errorf("step %d: %w", i+1, err)
			results = append(results, sr)
			continue
		}
		sr.Config = cfg

		result, err := sim.New(cfg, log).Run(ctx)
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err != nil {
			sr.Err = fmt.Errorf("step %d: %w", i+1, err)
		}
		sr.Result = result
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial altitude and velocity of a base
// run uniformly by up to ±Perturbation.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Workers      int
	Seed         int64
}

// MonteCarloResult holds one trial.
type MonteCarloResult struct {
	TrialID int
	Z0, V0  float64
	FinalEZ float64
	Stable  bool // finished without divergence
	Err     error
}

// RunMonteCarlo executes the trials concurrently. The perturbations are
// drawn up front so a seed reproduces the same trials for any worker count.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log *zap.Logger) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("need at least one trial, got %d", cfg.NumTrials)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]*config.Config, cfg.NumTrials)
	for trial := range cfgs {
		c := cfg.Base.Clone()
		c.InitState.Z += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		c.InitState.V += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		c.Logger.TraceEvaluations = false
		cfgs[trial] = c
	}

	outcomes, err := sim.NewEnsemble(log, cfg.Workers).Run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(outcomes))
	for i, o := range outcomes {
		r := MonteCarloResult{
			TrialID: i,
			Z0:      o.Config.InitState.Z,
			V0:      o.Config.InitState.V,
			Stable:  o.Err == nil,
			Err:     o.Err,
		}
		if o.Err == nil {
			r.FinalEZ = o.Result.Summary.FinalEZ
		}
		results[i] = r
	}
	return results, nil
}

// MonteCarloStats counts stable and divergent trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
