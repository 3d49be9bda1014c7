package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/nbodysim/internal/nbody"
)

func TestEnergyHistory_Wraps(t *testing.T) {
	h := NewEnergyHistory(3)

	if h.Len() != 0 || h.Value() != 0 {
		t.Fatalf("expected empty history, got len %d value %f", h.Len(), h.Value())
	}

	for i := 1; i <= 5; i++ {
		h.Observe(nbody.Report{Total: float64(i)})
	}

	got := h.Values()
	expected := []float64{3, 4, 5}
	if len(got) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("value %d: expected %f, got %f", i, expected[i], got[i])
		}
	}
	if h.Value() != 5 {
		t.Errorf("expected latest value 5, got %f", h.Value())
	}
}

func TestEnergyHistory_Partial(t *testing.T) {
	h := NewEnergyHistory(4)
	h.Observe(nbody.Report{Total: -1})
	h.Observe(nbody.Report{Total: -2})

	got := h.Values()
	if len(got) != 2 || got[0] != -1 || got[1] != -2 {
		t.Errorf("expected [-1 -2], got %v", got)
	}

	h.Reset()
	if h.Len() != 0 {
		t.Errorf("expected empty history after reset, got %d", h.Len())
	}
}

func TestEnergyHistory_DefaultCapacity(t *testing.T) {
	h := NewEnergyHistory(0)
	for i := 0; i < DefaultHistory+10; i++ {
		h.Observe(nbody.Report{Total: float64(i)})
	}
	if h.Len() != DefaultHistory {
		t.Errorf("expected %d samples, got %d", DefaultHistory, h.Len())
	}
	if h.Values()[0] != 10 {
		t.Errorf("expected oldest sample 10, got %f", h.Values()[0])
	}
}

func TestEnergyDrift(t *testing.T) {
	d := NewEnergyDrift()

	d.Observe(nbody.Report{Total: -1.01, Initial: -1})
	d.Observe(nbody.Report{Total: -1.05, Initial: -1})
	d.Observe(nbody.Report{Total: -1.02, Initial: -1})

	if math.Abs(d.Value()-5) > 1e-9 {
		t.Errorf("expected max drift 5%%, got %f", d.Value())
	}
	if math.Abs(d.Current()-2) > 1e-9 {
		t.Errorf("expected current drift 2%%, got %f", d.Current())
	}

	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyDrift_ZeroBaseline(t *testing.T) {
	d := NewEnergyDrift()
	d.Observe(nbody.Report{Total: 3, Initial: 0})

	if d.Value() != 0 || math.IsNaN(d.Value()) {
		t.Errorf("expected zero-baseline report to be skipped, got %f", d.Value())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1.0 {
		t.Errorf("expected 1.0 with no samples, got %f", s.Value())
	}

	s.Observe(nbody.Report{Total: -1.001, Initial: -1})
	s.Observe(nbody.Report{Total: -1.5, Initial: -1})
	s.Observe(nbody.Report{Total: math.NaN(), Initial: -1})
	s.Observe(nbody.Report{Total: -1, Initial: -1})

	if math.Abs(s.Value()-0.5) > 1e-9 {
		t.Errorf("expected stability 0.5, got %f", s.Value())
	}
}

func TestTickTime(t *testing.T) {
	c := NewTickTime()
	c.Observe(nbody.Report{ComputeTime: 2 * time.Millisecond})
	c.Observe(nbody.Report{ComputeTime: 4 * time.Millisecond})
	c.Observe(nbody.Report{})

	if math.Abs(c.Value()-3) > 1e-9 {
		t.Errorf("expected mean 3ms, got %f", c.Value())
	}

	c.Reset()
	if c.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestDefaultsWithSimulation(t *testing.T) {
	p := nbody.DefaultParams()
	p.Count = 32
	p.MaxVel = 0.1
	s := nbody.New()
	if err := s.Init(p); err != nil {
		t.Fatal(err)
	}

	ms := Defaults()
	for i := 0; i < 5; i++ {
		s.TickTimed()
		ObserveAll(ms, s.Report())
	}

	values := Values(ms)
	for _, name := range []string{"energy_drift", "stability", "tick_ms"} {
		v, ok := values[name]
		if !ok {
			t.Errorf("missing metric %s", name)
			continue
		}
		if math.IsNaN(v) || v < 0 {
			t.Errorf("metric %s: unexpected value %f", name, v)
		}
	}
}
