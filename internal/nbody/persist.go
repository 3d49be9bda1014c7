package nbody

import (
	"fmt"
	"math"

	"github.com/san-kum/nbodysim/internal/snapshot"
)

// Save writes the particle array and scalar header to path. The file is
// replaced atomically, so a failed save leaves any previous file intact.
// An empty simulation cannot be saved.
func (s *Simulation) Save(path string) error {
	if len(s.particles) == 0 {
		return fmt.Errorf("nbody: save state: %w", ErrEmpty)
	}
	if s.tickCount > math.MaxInt32 {
		return fmt.Errorf("nbody: tick count %d does not fit the snapshot header", s.tickCount)
	}

	h := snapshot.Header{
		Count:         int32(len(s.particles)),
		TickCount:     int32(s.tickCount),
		ElapsedTime:   s.elapsedTime,
		InitialEnergy: s.initialEnergy,
	}

	recs := make([]snapshot.Record, len(s.particles))
	for i := range s.particles {
		recs[i] = s.particles[i].record()
	}

	if err := snapshot.WriteFile(path, h, recs); err != nil {
		return fmt.Errorf("nbody: save state: %w", err)
	}
	return nil
}

// Load replaces the particle array and counters with the snapshot at path,
// then recomputes energy and takes it as the new baseline. The stored
// initial energy is not restored, and neither is the generation max mass:
// Recolor keeps using the value of the last Init until RecolorWith sets a
// new one. A file without particles is rejected with snapshot.ErrFormat.
// On any error the simulation is left unchanged.
func (s *Simulation) Load(path string) error {
	h, recs, err := snapshot.ReadFile(path)
	if err != nil {
		return fmt.Errorf("nbody: load state: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("nbody: load state: %w: no particles in %s", snapshot.ErrFormat, path)
	}

	particles := make([]Particle, len(recs))
	for i, r := range recs {
		particles[i] = fromRecord(r)
	}

	s.particles = particles
	s.params.Count = len(particles)
	s.tickCount = int(h.TickCount)
	s.elapsedTime = h.ElapsedTime
	s.computeTime = 0

	s.RebaselineEnergy()
	return nil
}
