package experiment

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/nbody"
)

type Config struct {
	Ticks       int
	SampleEvery int
	History     int
}

// Result is what a run produced. On cancellation it holds everything
// recorded up to the last completed tick.
type Result struct {
	// Trace holds the baseline report, every SampleEvery-th tick and the
	// final tick.
	Trace      []nbody.Report
	History    []float64
	Metrics    map[string]float64
	TicksTaken int
	Wall       time.Duration
}

// Observer is called after every tick.
type Observer func(r nbody.Report)

// Experiment drives one simulation for a fixed number of ticks and records
// its energy diagnostics.
type Experiment struct {
	cfg       Config
	sim       *nbody.Simulation
	metrics   []metrics.Metric
	history   *metrics.EnergyHistory
	observers []Observer
	log       logrus.FieldLogger
}

func New(sim *nbody.Simulation, cfg Config, log logrus.FieldLogger) *Experiment {
	if cfg.SampleEvery < 1 {
		cfg.SampleEvery = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{
		cfg:     cfg,
		sim:     sim,
		history: metrics.NewEnergyHistory(cfg.History),
		log:     log,
	}
}

func (e *Experiment) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer)     { e.observers = append(e.observers, o) }

// Simulation returns the driven simulation.
func (e *Experiment) Simulation() *nbody.Simulation { return e.sim }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	for _, m := range e.metrics {
		m.Reset()
	}
	e.history.Reset()

	result := &Result{
		Trace:   []nbody.Report{e.sim.Report()},
		Metrics: make(map[string]float64),
	}
	startTick := e.sim.TickCount()
	progress := max(e.cfg.Ticks/10, 1)

	e.log.WithFields(logrus.Fields{
		"count": e.sim.Count(),
		"ticks": e.cfg.Ticks,
		"dt":    e.sim.Dt(),
	}).Info("run started")

	start := time.Now()
	err := e.sim.Run(ctx, e.cfg.Ticks, func(s *nbody.Simulation) bool {
		r := s.Report()
		done := s.TickCount() - startTick

		e.history.Observe(r)
		metrics.ObserveAll(e.metrics, r)
		for _, o := range e.observers {
			o(r)
		}

		if done%e.cfg.SampleEvery == 0 || done == e.cfg.Ticks {
			result.Trace = append(result.Trace, r)
		}
		if done%progress == 0 {
			e.log.WithFields(logrus.Fields{
				"tick":    r.Tick,
				"total":   r.Total,
				"tick_ms": float64(r.ComputeTime) / float64(time.Millisecond),
			}).Debug("progress")
		}
		return true
	})

	result.Wall = time.Since(start)
	result.TicksTaken = e.sim.TickCount() - startTick
	result.History = e.history.Values()
	result.Metrics = metrics.Values(e.metrics)

	if err != nil {
		// keep the last completed tick in the trace
		if last := e.sim.Report(); result.Trace[len(result.Trace)-1].Tick != last.Tick {
			result.Trace = append(result.Trace, last)
		}
		e.log.WithError(err).WithField("ticks", result.TicksTaken).Warn("run interrupted")
		return result, err
	}

	e.log.WithFields(logrus.Fields{
		"ticks": result.TicksTaken,
		"wall":  result.Wall,
	}).Info("run finished")

	return result, nil
}
