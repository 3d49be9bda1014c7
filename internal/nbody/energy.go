package nbody

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Report is a point-in-time copy of the scalar state, taken between ticks.
type Report struct {
	Tick        int
	Time        float64
	Kinetic     float64
	Potential   float64
	Total       float64
	Initial     float64
	ComputeTime time.Duration
}

// Report snapshots the current scalar state.
func (s *Simulation) Report() Report {
	return Report{
		Tick:        s.tickCount,
		Time:        s.elapsedTime,
		Kinetic:     s.kineticEnergy,
		Potential:   s.potentialEnergy,
		Total:       s.totalEnergy,
		Initial:     s.initialEnergy,
		ComputeTime: s.computeTime,
	}
}

// Energy returns the energies computed by the last tick or recompute.
func (s *Simulation) Energy() (kinetic, potential, total float64) {
	return s.kineticEnergy, s.potentialEnergy, s.totalEnergy
}

// Deviation is the percentage drift of Total from Initial. It is NaN when
// the baseline is zero.
func (r Report) Deviation() float64 {
	if r.Initial == 0 {
		return math.NaN()
	}
	return math.Abs((r.Total - r.Initial) * 100 / r.Initial)
}

// UpdateEnergy recomputes the per-particle and total energies from the
// current positions and velocities without advancing time. Kinematics,
// tickCount and elapsedTime are left alone.
func (s *Simulation) UpdateEnergy() {
	n := len(s.particles)
	if n == 0 {
		s.kineticEnergy = 0
		s.potentialEnergy = 0
		s.totalEnergy = 0
		return
	}

	kinetic := s.backend.Sum(n, driftChunk, s.kinetic)
	potential := s.backend.Sum(n, forceChunk, s.potential)

	s.kineticEnergy = kinetic
	s.potentialEnergy = potential
	s.totalEnergy = kinetic + potential
}

// RebaselineEnergy recomputes energy and stores the total as the new
// baseline for EnergyDeviation.
func (s *Simulation) RebaselineEnergy() {
	s.UpdateEnergy()
	s.initialEnergy = s.totalEnergy
}

// EnergyDeviation returns |(total - initial) * 100 / initial|. It fails
// with ErrZeroBaseline when no non-zero baseline has been captured.
func (s *Simulation) EnergyDeviation() (float64, error) {
	if s.initialEnergy == 0 {
		return 0, ErrZeroBaseline
	}
	return math.Abs((s.totalEnergy - s.initialEnergy) * 100 / s.initialEnergy), nil
}

func (s *Simulation) kinetic(start, end int) float64 {
	total := 0.0
	for i := start; i < end; i++ {
		p := &s.particles[i]
		p.KineticEnergy = p.Mass * r3.Norm2(p.Vel) * 0.5
		total += p.KineticEnergy
	}
	return total
}

// potential evaluates each pair once at the current separation, at full
// weight, with the same softening floor as the tick.
func (s *Simulation) potential(start, end int) float64 {
	ps := s.particles
	total := 0.0

	for i := start; i < end; i++ {
		p := &ps[i]
		pe := 0.0

		for j := range ps {
			if i == j {
				continue
			}
			r2 := math.Max(r3.Norm2(r3.Sub(ps[j].Pos, p.Pos)), SofteningSquared)
			inv := 1 / math.Sqrt(r2)
			force := G * ps[j].Mass * inv * inv * inv
			pe -= force * p.Mass * r2
		}

		p.PotentialEnergy = pe
		total += 0.5 * pe
	}
	return total
}
