package nbody

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/nbodysim/internal/snapshot"
)

type Particle struct {
	Pos r3.Vec
	Vel r3.Vec
	Acc r3.Vec

	Mass float64

	// Color is a display attribute only.
	Color [3]float32

	// Recomputed every tick.
	KineticEnergy   float64
	PotentialEnergy float64
}

func (p *Particle) record() snapshot.Record {
	return snapshot.Record{
		Pos:             [3]float64{p.Pos.X, p.Pos.Y, p.Pos.Z},
		Vel:             [3]float64{p.Vel.X, p.Vel.Y, p.Vel.Z},
		Acc:             [3]float64{p.Acc.X, p.Acc.Y, p.Acc.Z},
		Mass:            p.Mass,
		Color:           p.Color,
		KineticEnergy:   p.KineticEnergy,
		PotentialEnergy: p.PotentialEnergy,
	}
}

func fromRecord(r snapshot.Record) Particle {
	return Particle{
		Pos:             r3.Vec{X: r.Pos[0], Y: r.Pos[1], Z: r.Pos[2]},
		Vel:             r3.Vec{X: r.Vel[0], Y: r.Vel[1], Z: r.Vel[2]},
		Acc:             r3.Vec{X: r.Acc[0], Y: r.Acc[1], Z: r.Acc[2]},
		Mass:            r.Mass,
		Color:           r.Color,
		KineticEnergy:   r.KineticEnergy,
		PotentialEnergy: r.PotentialEnergy,
	}
}
