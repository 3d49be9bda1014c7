package nbody

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// generate builds a particle array from a math/rand source seeded with
// p.Seed. Per particle it draws position, velocity, then acceleration
// components in x, y, z order; masses are drawn in a second pass over the
// array from the same source. Identical params always yield an identical
// array.
func generate(p Params) []Particle {
	rng := rand.New(rand.NewSource(p.Seed))
	particles := make([]Particle, p.Count)

	for i := range particles {
		particles[i].Pos = r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		particles[i].Vel = r3.Scale(p.MaxVel, symmetric(rng))
		particles[i].Acc = r3.Scale(p.MaxAcc, symmetric(rng))
	}

	for i := range particles {
		particles[i].Mass = rng.Float64() * p.MaxMass
	}

	recolor(particles, p.MaxMass)
	return particles
}

// symmetric draws each component uniformly from [-1, 1).
func symmetric(rng *rand.Rand) r3.Vec {
	return r3.Vec{
		X: 2*rng.Float64() - 1,
		Y: 2*rng.Float64() - 1,
		Z: 2*rng.Float64() - 1,
	}
}
