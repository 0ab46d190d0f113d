package config

import "sort"

// Presets are named starting points covering each technique and mechanism.
var Presets = map[string]func(*Config){
	"reversible": func(c *Config) {
		c.Kinetics.RateConstant = 1
	},
	"quasi-reversible": func(c *Config) {},
	"irreversible": func(c *Config) {
		c.Kinetics.RateConstant = 1e-4
		c.Sweep.Switch = -1.0
	},
	"ec-slow": func(c *Config) {
		c.Mechanism = "EC"
		c.Kinetics.RateConstant = 1
		c.Chemistry.Forward = 0.05
	},
	"ec-fast": func(c *Config) {
		c.Mechanism = "EC"
		c.Kinetics.RateConstant = 1
		c.Chemistry.Forward = 5
	},
	"catalytic": func(c *Config) {
		c.Mechanism = "ECat"
		c.Kinetics.RateConstant = 1
		c.Chemistry.Forward = 1
	},
	"ce": func(c *Config) {
		c.Mechanism = "CE"
		c.Kinetics.RateConstant = 1
		c.Chemistry.Forward = 0.5
		c.Chemistry.Reverse = 1
	},
	"chronoamperometry": func(c *Config) {
		c.Technique = "step"
	},
	"ca-ec": func(c *Config) {
		c.Technique = "step"
		c.Mechanism = "EC"
		c.Chemistry.Forward = 0.2
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
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
