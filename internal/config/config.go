package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/nbody"
)

const (
	DefaultTicks       = 500
	DefaultSampleEvery = 1
)

var ErrInvalidConfig = errors.New("config: invalid run configuration")

// Config describes one run: how the particles are generated and how the
// driver steps and records them.
type Config struct {
	Seed    int64   `yaml:"seed"`
	Count   int     `yaml:"count"`
	Dt      float64 `yaml:"dt"`
	MaxMass float64 `yaml:"max_mass"`
	MaxVel  float64 `yaml:"max_vel"`
	MaxAcc  float64 `yaml:"max_acc"`

	Ticks       int `yaml:"ticks"`
	SampleEvery int `yaml:"sample_every"`
	// Workers is the CPU worker count; 0 uses every core.
	Workers int `yaml:"workers"`
	// History is the capacity of the energy ring buffer.
	History int `yaml:"history"`
	// Snapshot, when set, is where the final state is also written.
	Snapshot string `yaml:"snapshot,omitempty"`
}

func DefaultConfig() *Config {
	p := nbody.DefaultParams()
	return &Config{
		Seed:        p.Seed,
		Count:       p.Count,
		Dt:          p.Dt,
		MaxMass:     p.MaxMass,
		MaxVel:      p.MaxVel,
		MaxAcc:      p.MaxAcc,
		Ticks:       DefaultTicks,
		SampleEvery: DefaultSampleEvery,
		History:     metrics.DefaultHistory,
	}
}

// Load reads a YAML file on top of the defaults, so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Params converts the generation keys into simulation parameters.
func (c *Config) Params() nbody.Params {
	return nbody.Params{
		Seed:    c.Seed,
		Count:   c.Count,
		Dt:      c.Dt,
		MaxMass: c.MaxMass,
		MaxVel:  c.MaxVel,
		MaxAcc:  c.MaxAcc,
	}
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must be non-negative, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", ErrInvalidConfig, c.SampleEvery)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.History < 1 {
		return fmt.Errorf("%w: history must be at least 1, got %d", ErrInvalidConfig, c.History)
	}
	return nil
}
