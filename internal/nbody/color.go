package nbody

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSVToRGB converts hue in degrees, saturation and value in [0, 1] to RGB.
// A non-positive saturation yields gray at value; hue 360 wraps to 0.
func HSVToRGB(hue, saturation, value float64) [3]float32 {
	if saturation <= 0 {
		v := float32(value)
		return [3]float32{v, v, v}
	}
	if hue >= 360 || hue < 0 {
		hue = 0
	}
	c := colorful.Hsv(hue, saturation, value)
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}

// particleColor spreads hue over the index range and darkens heavier
// particles: value runs from 1.0 at zero mass down to 0.2 at maxMass.
func particleColor(index, count int, mass, maxMass float64) [3]float32 {
	hue := float64(index) * 360 / float64(count)
	value := (maxMass-mass)*0.8/maxMass + 0.2
	return HSVToRGB(hue, 1.0, value)
}

func recolor(particles []Particle, maxMass float64) {
	n := len(particles)
	for i := range particles {
		particles[i].Color = particleColor(i, n, particles[i].Mass, maxMass)
	}
}
