package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. ALTIHOLD_PLANT_MASS.
const EnvPrefix = "ALTIHOLD"

// SetDefaults registers every key of base as a viper default so that
// files, environment and flags layer on top of it.
func SetDefaults(v *viper.Viper, base *Config) {
	// -- Plant --
	v.SetDefault("plant.mass", base.Plant.Mass)
	v.SetDefault("plant.gravity", base.Plant.Gravity)

	// -- Controller --
	v.SetDefault("controller.target", base.Controller.Target)
	v.SetDefault("controller.u_min", base.Controller.UMin)
	v.SetDefault("controller.u_max", base.Controller.UMax)
	v.SetDefault("controller.thrust_gs", base.Controller.ThrustGs)

	v.SetDefault("adaptation.damping", base.Adaptation.Damping)

	// -- Initial state --
	v.SetDefault("init_state.z", base.InitState.Z)
	v.SetDefault("init_state.v", base.InitState.V)
	v.SetDefault("init_state.e_i", base.InitState.EI)
	v.SetDefault("init_state.kp", base.InitState.KP)
	v.SetDefault("init_state.ki", base.InitState.KI)
	v.SetDefault("init_state.kd", base.InitState.KD)

	v.SetDefault("horizon.start", base.Horizon.Start)
	v.SetDefault("horizon.end", base.Horizon.End)

	// -- Solver --
	v.SetDefault("solver.integrator", base.Solver.Integrator)
	v.SetDefault("solver.rtol", base.Solver.RelTol)
	v.SetDefault("solver.atol", base.Solver.AbsTol)
	v.SetDefault("solver.max_step", base.Solver.MaxStep)
	v.SetDefault("solver.first_step", base.Solver.FirstStep)
	v.SetDefault("solver.max_steps", base.Solver.MaxSteps)
	v.SetDefault("solver.output_dt", base.Solver.OutputDt)
	v.SetDefault("solver.fixed_dt", base.Solver.FixedDt)

	v.SetDefault("warnings.saturation_fraction", base.Warnings.SaturationFraction)

	// -- Logger --
	v.SetDefault("logger.level", base.Logger.Level)
	v.SetDefault("logger.format", base.Logger.Format)
	v.SetDefault("logger.service_name", base.Logger.ServiceName)
	v.SetDefault("logger.log_file", base.Logger.LogFile)
	v.SetDefault("logger.max_size", base.Logger.MaxSize)
	v.SetDefault("logger.max_backups", base.Logger.MaxBackups)
	v.SetDefault("logger.max_age", base.Logger.MaxAge)
	v.SetDefault("logger.compress", base.Logger.Compress)
	v.SetDefault("logger.trace_evaluations", base.Logger.TraceEvaluations)
}

// BindEnv enables ALTIHOLD_* overrides for every registered key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewViper layers an optional YAML file and the environment over base.
func NewViper(base *Config, path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v, base)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	BindEnv(v)
	return v, nil
}

// FromViper decodes and validates the merged settings.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
