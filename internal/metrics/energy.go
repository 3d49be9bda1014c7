package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/nbody"
)

// DefaultHistory is the number of total-energy samples kept for plotting.
const DefaultHistory = 1000

// EnergyHistory keeps the most recent total energies in a ring buffer.
// Value reports the latest sample.
type EnergyHistory struct {
	name    string
	buf     []float64
	next    int
	samples int
}

func NewEnergyHistory(capacity int) *EnergyHistory {
	if capacity < 1 {
		capacity = DefaultHistory
	}
	return &EnergyHistory{
		name: "energy",
		buf:  make([]float64, capacity),
	}
}

func (e *EnergyHistory) Name() string { return e.name }

func (e *EnergyHistory) Observe(r nbody.Report) {
	e.buf[e.next] = r.Total
	e.next = (e.next + 1) % len(e.buf)
	e.samples++
}

func (e *EnergyHistory) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	last := (e.next - 1 + len(e.buf)) % len(e.buf)
	return e.buf[last]
}

// Len is the number of samples currently held.
func (e *EnergyHistory) Len() int {
	if e.samples < len(e.buf) {
		return e.samples
	}
	return len(e.buf)
}

// Values returns the held samples oldest first.
func (e *EnergyHistory) Values() []float64 {
	n := e.Len()
	out := make([]float64, n)
	start := 0
	if e.samples > len(e.buf) {
		start = e.next
	}
	for i := 0; i < n; i++ {
		out[i] = e.buf[(start+i)%len(e.buf)]
	}
	return out
}

func (e *EnergyHistory) Reset() {
	e.next = 0
	e.samples = 0
}

// EnergyDrift tracks the largest deviation, in percent, of total energy
// from each report's baseline. Reports with a zero baseline are skipped.
type EnergyDrift struct {
	name     string
	current  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(r nbody.Report) {
	if r.Initial == 0 {
		return
	}
	e.current = r.Deviation()
	e.maxDrift = math.Max(e.maxDrift, e.current)
	e.samples++
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the deviation of the last counted report.
func (e *EnergyDrift) Current() float64 {
	return e.current
}

func (e *EnergyDrift) Reset() {
	e.current = 0
	e.maxDrift = 0
	e.samples = 0
}
