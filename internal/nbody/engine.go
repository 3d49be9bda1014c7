package nbody

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// G is the gravitational constant.
	G = 6.67259e-11

	// SofteningSquared is the floor applied to squared separations.
	SofteningSquared = 1e-3

	// DriftCoefficient scales dt in the kick/drift phase.
	DriftCoefficient = 1.5
)

// Minimum particles per worker. The force phase does O(n) work per index,
// so it splits much finer than the drift phase.
const (
	driftChunk = 1024
	forceChunk = 16
)

// Tick advances the simulation by one step. An empty store is left
// untouched.
func (s *Simulation) Tick() {
	n := len(s.particles)
	if n == 0 {
		return
	}

	kinetic := s.backend.Sum(n, driftChunk, s.drift)
	potential := s.backend.Sum(n, forceChunk, s.correct)

	s.kineticEnergy = kinetic
	s.potentialEnergy = potential
	s.totalEnergy = kinetic + potential

	s.tickCount++
	s.elapsedTime += s.dt
}

// TickTimed runs one tick and records its wall-clock duration.
func (s *Simulation) TickTimed() time.Duration {
	start := time.Now()
	s.Tick()
	s.computeTime = time.Since(start)
	return s.computeTime
}

// TickN runs n ticks back to back.
func (s *Simulation) TickN(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// Run performs up to ticks timed ticks, calling observe after each one.
// The context is only checked between ticks. Returning false from observe
// stops the run early.
func (s *Simulation) Run(ctx context.Context, ticks int, observe func(*Simulation) bool) error {
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.TickTimed()

		if observe != nil && !observe(s) {
			return nil
		}
	}
	return nil
}

// drift is phase A: kick and drift particles [start, end) with their
// previous acceleration. It returns their summed kinetic energy.
func (s *Simulation) drift(start, end int) float64 {
	step := s.dt * DriftCoefficient
	kinetic := 0.0

	for i := start; i < end; i++ {
		p := &s.particles[i]
		p.Vel = r3.Add(p.Vel, r3.Scale(step, p.Acc))
		p.Pos = r3.Add(p.Pos, r3.Scale(step, p.Vel))
		p.KineticEnergy = p.Mass * r3.Norm2(p.Vel) * 0.5
		kinetic += p.KineticEnergy
	}
	return kinetic
}

// correct is phase B: recompute acceleration and potential energy of
// particles [start, end) from the post-drift positions of all others.
// Each pair is evaluated twice, once at the current separation and once
// against particle i extrapolated one step under the first force, and the
// two accelerations are averaged. It returns half the summed per-particle
// potential, so every pair is counted once.
func (s *Simulation) correct(start, end int) float64 {
	ps := s.particles
	dt := s.dt
	potential := 0.0

	for i := start; i < end; i++ {
		p := &ps[i]
		var acc r3.Vec
		pe := 0.0

		for j := range ps {
			if i == j {
				continue
			}
			q := &ps[j]

			d := r3.Sub(q.Pos, p.Pos)
			r2 := r3.Norm2(d)
			soft := math.Max(r2, SofteningSquared)
			inv := 1 / math.Sqrt(soft)
			force1 := G * q.Mass * inv * inv * inv
			pe -= 0.5 * force1 * p.Mass * soft

			vel := r3.Add(p.Vel, r3.Scale(dt, r3.Scale(force1, d)))
			pos := r3.Add(p.Pos, r3.Scale(dt, vel))

			d2 := r3.Sub(q.Pos, pos)
			soft2 := math.Max(r3.Norm2(d2), SofteningSquared)
			inv = 1 / math.Sqrt(soft2)
			force2 := G * q.Mass * inv * inv * inv
			pe -= 0.5 * force2 * p.Mass * soft2

			// both separations clamped: no physical contribution
			if r2 <= SofteningSquared && soft2 <= SofteningSquared {
				continue
			}

			acc = r3.Add(acc, r3.Scale(0.5, r3.Add(r3.Scale(force1, d), r3.Scale(force2, d2))))
		}

		p.Acc = acc
		p.PotentialEnergy = pe
		potential += 0.5 * pe
	}
	return potential
}
