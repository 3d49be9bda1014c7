package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/nbodysim/internal/nbody"
)

// FitCamera centres the camera on the particles' bounding box and zooms so
// the largest extent fills about two thirds of the view.
func FitCamera(c *Camera, particles []nbody.Particle) {
	if len(particles) == 0 {
		return
	}
	lo, hi := particles[0].Pos, particles[0].Pos
	for _, p := range particles[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.Pos.X), Y: math.Min(lo.Y, p.Pos.Y), Z: math.Min(lo.Z, p.Pos.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.Pos.X), Y: math.Max(hi.Y, p.Pos.Y), Z: math.Max(hi.Z, p.Pos.Z)}
	}
	c.Center = r3.Scale(0.5, r3.Add(lo, hi))

	extent := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	if extent > 0 && !math.IsInf(extent, 0) {
		c.Zoom = 2 / extent
	}
}

// RenderParticles draws every visible particle onto a w x h cell canvas.
// Farther particles never overwrite the colour of a nearer one.
func RenderParticles(particles []nbody.Particle, cam *Camera, w, h int) *Canvas {
	c := NewCanvas(w, h)
	sw, sh := w*2, h*4
	for _, p := range particles {
		x, y, depth, ok := cam.Project(p.Pos, sw, sh)
		if !ok {
			continue
		}
		c.Plot(x, y, depth, p.Color)
	}
	return c
}
