package metrics

import (
	"time"

	"github.com/san-kum/nbodysim/internal/nbody"
)

// TickTime is the mean wall-clock time per timed tick, in milliseconds.
// Reports without a compute time are ignored.
type TickTime struct {
	name    string
	sum     time.Duration
	samples int
}

func NewTickTime() *TickTime {
	return &TickTime{
		name: "tick_ms",
	}
}

func (c *TickTime) Name() string {
	return c.name
}

func (c *TickTime) Observe(r nbody.Report) {
	if r.ComputeTime <= 0 {
		return
	}
	c.sum += r.ComputeTime
	c.samples++
}

func (c *TickTime) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	mean := c.sum / time.Duration(c.samples)
	return float64(mean) / float64(time.Millisecond)
}

func (c *TickTime) Reset() {
	c.sum = 0
	c.samples = 0
}
