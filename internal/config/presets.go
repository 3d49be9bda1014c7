package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		Seed: 42, Count: 1000, Dt: 0.02, MaxMass: 1.0,
		Ticks: 500, SampleEvery: 1, History: 1000,
	},
	"pair": {
		Seed: 42, Count: 2, Dt: 0.02, MaxMass: 1.0,
		Ticks: 1000, SampleEvery: 1, History: 1000,
	},
	"single": {
		Seed: 7, Count: 1, Dt: 0.02, MaxMass: 1.0, MaxVel: 0.5,
		Ticks: 100, SampleEvery: 1, History: 100,
	},
	"swarm": {
		Seed: 1, Count: 4000, Dt: 0.01, MaxMass: 1.0,
		Ticks: 100, SampleEvery: 5, History: 1000,
	},
	"hot": {
		Seed: 42, Count: 500, Dt: 0.02, MaxMass: 1.0, MaxVel: 0.05, MaxAcc: 0.01,
		Ticks: 1000, SampleEvery: 2, History: 1000,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
