package nbody

import (
	"fmt"
	"math"
)

const (
	DefaultSeed    = 42
	DefaultCount   = 1000
	DefaultDt      = 0.02
	DefaultMaxMass = 1.0
)

// Params are the generation inputs of a simulation.
type Params struct {
	Seed    int64
	Count   int
	Dt      float64
	MaxMass float64
	MaxVel  float64
	MaxAcc  float64
}

func DefaultParams() Params {
	return Params{
		Seed:    DefaultSeed,
		Count:   DefaultCount,
		Dt:      DefaultDt,
		MaxMass: DefaultMaxMass,
	}
}

// Validate rejects out-of-range values; nothing is clamped.
func (p Params) Validate() error {
	if p.Count < 1 || p.Count > math.MaxInt32 {
		return fmt.Errorf("%w: count must be in [1, %d], got %d", ErrParameterBounds, math.MaxInt32, p.Count)
	}
	if err := validateDt(p.Dt); err != nil {
		return err
	}
	if err := validateMaxMass(p.MaxMass); err != nil {
		return err
	}
	if !(p.MaxVel >= 0) || math.IsInf(p.MaxVel, 0) {
		return fmt.Errorf("%w: max velocity must be non-negative, got %g", ErrParameterBounds, p.MaxVel)
	}
	if !(p.MaxAcc >= 0) || math.IsInf(p.MaxAcc, 0) {
		return fmt.Errorf("%w: max acceleration must be non-negative, got %g", ErrParameterBounds, p.MaxAcc)
	}
	return nil
}

func validateDt(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrParameterBounds, dt)
	}
	return nil
}

func validateMaxMass(m float64) error {
	if !(m > 0) || math.IsInf(m, 0) {
		return fmt.Errorf("%w: max mass must be positive, got %g", ErrParameterBounds, m)
	}
	return nil
}
