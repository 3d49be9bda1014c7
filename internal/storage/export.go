package storage

import (
	"encoding/json"
	"io"
)

type EnergySample struct {
	Tick      int     `json:"tick"`
	Time      float64 `json:"time"`
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

type ExportData struct {
	Run    RunMetadata    `json:"run"`
	Steps  int            `json:"steps"`
	Energy []EnergySample `json:"energy"`
}

// ExportJSON writes a run's metadata and energy trace as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	trace, err := s.LoadEnergy(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:    *meta,
		Steps:  len(trace),
		Energy: make([]EnergySample, len(trace)),
	}
	for i, r := range trace {
		data.Energy[i] = EnergySample{
			Tick:      r.Tick,
			Time:      r.Time,
			Kinetic:   r.Kinetic,
			Potential: r.Potential,
			Total:     r.Total,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
