package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/integrators"
	"github.com/san-kum/altihold/internal/physics"
)

const (
	DefaultTarget             = 100.0
	DefaultDamping            = 1e-6
	DefaultHorizon            = 100.0
	DefaultIntegrator         = "rk45"
	DefaultSaturationFraction = 0.25

	DefaultZ  = 10.0
	DefaultKp = 2.0
	DefaultKi = 0.1
	DefaultKd = 6.0
)

// Config is one run bundle. Every constant of the closed loop lives here.
type Config struct {
	Plant      PlantConfig      `mapstructure:"plant" yaml:"plant"`
	Controller ControllerConfig `mapstructure:"controller" yaml:"controller"`
	Adaptation AdaptationConfig `mapstructure:"adaptation" yaml:"adaptation"`
	InitState  InitStateConfig  `mapstructure:"init_state" yaml:"init_state"`
	Horizon    HorizonConfig    `mapstructure:"horizon" yaml:"horizon"`
	Solver     SolverConfig     `mapstructure:"solver" yaml:"solver"`
	Warnings   WarningsConfig   `mapstructure:"warnings" yaml:"warnings"`
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
}

type PlantConfig struct {
	Mass    float64 `mapstructure:"mass" yaml:"mass"`
	Gravity float64 `mapstructure:"gravity" yaml:"gravity"`
}

// ControllerConfig holds the fixed part of the law. With u_max left at
// zero the upper limit is thrust_gs times the plant weight.
type ControllerConfig struct {
	Target   float64 `mapstructure:"target" yaml:"target"`
	UMin     float64 `mapstructure:"u_min" yaml:"u_min"`
	UMax     float64 `mapstructure:"u_max" yaml:"u_max"`
	ThrustGs float64 `mapstructure:"thrust_gs" yaml:"thrust_gs"`
}

type AdaptationConfig struct {
	Damping float64 `mapstructure:"damping" yaml:"damping"`
}

type InitStateConfig struct {
	Z  float64 `mapstructure:"z" yaml:"z"`
	V  float64 `mapstructure:"v" yaml:"v"`
	EI float64 `mapstructure:"e_i" yaml:"e_i"`
	KP float64 `mapstructure:"kp" yaml:"kp"`
	KI float64 `mapstructure:"ki" yaml:"ki"`
	KD float64 `mapstructure:"kd" yaml:"kd"`
}

type HorizonConfig struct {
	Start float64 `mapstructure:"start" yaml:"start"`
	End   float64 `mapstructure:"end" yaml:"end"`
}

// SolverConfig selects and tunes the integrator. Zero max_step means
// unbounded, zero first_step lets the solver choose, zero output_dt keeps
// every accepted step.
type SolverConfig struct {
	Integrator string  `mapstructure:"integrator" yaml:"integrator"`
	RelTol     float64 `mapstructure:"rtol" yaml:"rtol"`
	AbsTol     float64 `mapstructure:"atol" yaml:"atol"`
	MaxStep    float64 `mapstructure:"max_step" yaml:"max_step"`
	FirstStep  float64 `mapstructure:"first_step" yaml:"first_step"`
	MaxSteps   int     `mapstructure:"max_steps" yaml:"max_steps"`
	OutputDt   float64 `mapstructure:"output_dt" yaml:"output_dt"`
	FixedDt    float64 `mapstructure:"fixed_dt" yaml:"fixed_dt"`
}

type WarningsConfig struct {
	SaturationFraction float64 `mapstructure:"saturation_fraction" yaml:"saturation_fraction"`
}

type LoggerConfig struct {
	Level            string `mapstructure:"level" yaml:"level"`
	Format           string `mapstructure:"format" yaml:"format"`
	ServiceName      string `mapstructure:"service_name" yaml:"service_name"`
	LogFile          string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize          int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups       int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge           int    `mapstructure:"max_age" yaml:"max_age"`
	Compress         bool   `mapstructure:"compress" yaml:"compress"`
	TraceEvaluations bool   `mapstructure:"trace_evaluations" yaml:"trace_evaluations"`
}

func DefaultConfig() *Config {
	solver := dynamo.DefaultConfig()
	return &Config{
		Plant: PlantConfig{
			Mass:    physics.DefaultMass,
			Gravity: physics.DefaultGravity,
		},
		Controller: ControllerConfig{
			Target:   DefaultTarget,
			ThrustGs: physics.DefaultThrustGs,
		},
		Adaptation: AdaptationConfig{Damping: DefaultDamping},
		InitState: InitStateConfig{
			Z:  DefaultZ,
			KP: DefaultKp,
			KI: DefaultKi,
			KD: DefaultKd,
		},
		Horizon: HorizonConfig{End: DefaultHorizon},
		Solver: SolverConfig{
			Integrator: DefaultIntegrator,
			RelTol:     solver.RelTol,
			AbsTol:     solver.AbsTol,
			MaxSteps:   solver.MaxSteps,
			FixedDt:    solver.FixedDt,
		},
		Warnings: WarningsConfig{SaturationFraction: DefaultSaturationFraction},
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "altihold",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads path on top of base. Keys missing from the file keep the
// value of base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// ActuatorLimits returns the clamp range of the control law.
func (c *Config) ActuatorLimits() (float64, float64) {
	uMax := c.Controller.UMax
	if uMax == 0 {
		uMax = physics.NewPointMass(c.Plant.Mass, c.Plant.Gravity).ThrustLimit(c.Controller.ThrustGs)
	}
	return c.Controller.UMin, uMax
}

func (c *Config) InitialState() dynamo.State {
	s := c.InitState
	return dynamo.NewState(s.Z, s.V, s.EI, s.KP, s.KI, s.KD)
}

// SolverOptions converts the solver section to integrator options.
func (c *Config) SolverOptions() dynamo.Config {
	s := c.Solver
	out := dynamo.Config{
		RelTol:    s.RelTol,
		AbsTol:    s.AbsTol,
		MaxStep:   s.MaxStep,
		FirstStep: s.FirstStep,
		MaxSteps:  s.MaxSteps,
		OutputDt:  s.OutputDt,
		FixedDt:   s.FixedDt,
	}
	if out.MaxStep <= 0 {
		out.MaxStep = math.Inf(1)
	}
	return out
}

// Validate reports every rejected option. The result matches
// dynamo.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &dynamo.ConfigError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	finite := func(field string, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			fail(field, "must be finite, got %g", v)
			return false
		}
		return true
	}

	if finite("plant.mass", c.Plant.Mass) && c.Plant.Mass <= 0 {
		fail("plant.mass", "must be positive, got %g", c.Plant.Mass)
	}
	finite("plant.gravity", c.Plant.Gravity)

	finite("controller.target", c.Controller.Target)
	finite("controller.u_min", c.Controller.UMin)
	finite("controller.u_max", c.Controller.UMax)
	if c.Controller.UMax == 0 && finite("controller.thrust_gs", c.Controller.ThrustGs) && c.Controller.ThrustGs <= 0 {
		fail("controller.thrust_gs", "must be positive when u_max is derived, got %g", c.Controller.ThrustGs)
	}
	if lo, hi := c.ActuatorLimits(); hi < lo {
		fail("controller.u_max", "%g is below u_min %g", hi, lo)
	}

	finite("adaptation.damping", c.Adaptation.Damping)

	s := c.InitState
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"init_state.z", s.Z}, {"init_state.v", s.V}, {"init_state.e_i", s.EI},
		{"init_state.kp", s.KP}, {"init_state.ki", s.KI}, {"init_state.kd", s.KD},
	} {
		finite(f.name, f.v)
	}

	if finite("horizon.start", c.Horizon.Start) && finite("horizon.end", c.Horizon.End) &&
		c.Horizon.End <= c.Horizon.Start {
		fail("horizon.end", "must be after start %g, got %g", c.Horizon.Start, c.Horizon.End)
	}

	c.validateSolver(fail, finite)

	if w := c.Warnings.SaturationFraction; !(w >= 0 && w <= 1) {
		fail("warnings.saturation_fraction", "must be in [0, 1], got %g", w)
	}

	switch c.Logger.Format {
	case "console", "json":
	default:
		fail("logger.format", "must be console or json, got %q", c.Logger.Format)
	}

	return errors.Join(errs...)
}

func (c *Config) validateSolver(fail func(string, string, ...any), finite func(string, float64) bool) {
	s := c.Solver
	if !integrators.Known(s.Integrator) {
		fail("solver.integrator", "unknown integrator %q (have %v)", s.Integrator, integrators.List())
	}
	if finite("solver.rtol", s.RelTol) && s.RelTol <= 0 {
		fail("solver.rtol", "must be positive, got %g", s.RelTol)
	}
	if finite("solver.atol", s.AbsTol) && s.AbsTol < 0 {
		fail("solver.atol", "must not be negative, got %g", s.AbsTol)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"solver.max_step", s.MaxStep}, {"solver.first_step", s.FirstStep}, {"solver.output_dt", s.OutputDt},
	} {
		if finite(f.name, f.v) && f.v < 0 {
			fail(f.name, "must not be negative, got %g", f.v)
		}
	}
	if s.MaxSteps <= 0 {
		fail("solver.max_steps", "must be positive, got %d", s.MaxSteps)
	}
	if s.Integrator == "rk4" && !(s.FixedDt > 0) {
		fail("solver.fixed_dt", "must be positive for rk4, got %g", s.FixedDt)
	}
}
