// Package metrics accumulates diagnostics from per-tick energy reports.
package metrics

import "github.com/san-kum/nbodysim/internal/nbody"

type Metric interface {
	Name() string
	Observe(r nbody.Report)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every stored run.
func Defaults() []Metric {
	return []Metric{
		NewEnergyDrift(),
		NewStability(DefaultStabilityThreshold),
		NewTickTime(),
	}
}

// ObserveAll feeds r to every metric.
func ObserveAll(ms []Metric, r nbody.Report) {
	for _, m := range ms {
		m.Observe(r)
	}
}

// Values collects the current value of each metric by name.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
