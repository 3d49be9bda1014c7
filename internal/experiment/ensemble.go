package experiment

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/nbody"
)

// Ensemble runs the same configuration over consecutive seeds, one
// goroutine per member. Members tick serially so the ensemble itself is
// the unit of parallelism.
type Ensemble struct {
	params    nbody.Params
	cfg       Config
	numRuns   int
	seedStart int64
	log       logrus.FieldLogger
}

func NewEnsemble(p nbody.Params, cfg Config, numRuns int, seedStart int64, log logrus.FieldLogger) *Ensemble {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ensemble{params: p, cfg: cfg, numRuns: numRuns, seedStart: seedStart, log: log}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			p := e.params
			p.Seed = e.seedStart + int64(idx)

			s := nbody.New(nbody.WithBackend(compute.NewSerialBackend()))
			if err := s.Init(p); err != nil {
				errs[idx] = err
				return
			}

			exp := New(s, e.cfg, e.log.WithField("seed", p.Seed))
			for _, m := range metrics.Defaults() {
				exp.AddMetric(m)
			}

			results[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Spread returns the mean and sample standard deviation of a named metric
// across results. Results without the metric are ignored.
func Spread(results []*Result, name string) (mean, std float64) {
	vals := make([]float64, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if v, ok := r.Metrics[name]; ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, 0
	}
	if len(vals) == 1 {
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}
