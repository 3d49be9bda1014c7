package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/nbody"
)

// DefaultStabilityThreshold is the energy deviation, in percent, above
// which a tick counts as unstable.
const DefaultStabilityThreshold = 1.0

// Stability is the fraction of observed ticks whose energy deviation
// stayed within the threshold. Non-finite energies always count as
// violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(r nbody.Report) {
	s.samples++
	if math.IsNaN(r.Total) || math.IsInf(r.Total, 0) {
		s.violations++
		return
	}
	if r.Initial != 0 && r.Deviation() > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
