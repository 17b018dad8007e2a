package config

import "sort"

// Preset is a named starting point for a run.
type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"reference": {
		Description: "climb from 10 to 100 with the reference gains and slow adaptation",
		apply:       func(*Config) {},
	},
	"thrust-4g": {
		Description: "reference run with the upper limit at 4g instead of 4g times the mass",
		apply: func(c *Config) {
			c.Controller.UMax = c.Controller.ThrustGs * c.Plant.Gravity
		},
	},
	"frozen-gains": {
		Description: "plain saturating PID, adaptation switched off",
		apply: func(c *Config) {
			c.Adaptation.Damping = 0
		},
	},
	"divergent": {
		Description: "damping 1.0, the gains run away and the solver gives up",
		apply: func(c *Config) {
			c.Adaptation.Damping = 1.0
		},
	},
	"aggressive": {
		Description: "stiff gains, long stretches on the actuator limits",
		apply: func(c *Config) {
			c.InitState.KP, c.InitState.KI, c.InitState.KD = 8.0, 0.5, 10.0
		},
	},
	"sluggish": {
		Description: "soft gains, slow approach to the target",
		apply: func(c *Config) {
			c.InitState.KP, c.InitState.KI, c.InitState.KD = 0.5, 0.01, 3.0
			c.Horizon.End = 200
		},
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
