package compute

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
)

type CPUBackend struct {
	workers int
}

// NewCPUBackend returns a backend with the given number of workers.
// A non-positive count selects runtime.NumCPU().
func NewCPUBackend(workers int) *CPUBackend {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{
		workers: workers,
	}
}

func (c *CPUBackend) Name() string { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUBackend) Workers() int { return c.workers }

// chunks returns how many workers to use for n items so that no worker
// gets fewer than minChunk of them.
func (c *CPUBackend) chunks(n, minChunk int) int {
	if minChunk < 1 {
		minChunk = 1
	}
	workers := c.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func (c *CPUBackend) For(n, minChunk int, fn func(start, end int)) {
	c.Sum(n, minChunk, func(start, end int) float64 {
		fn(start, end)
		return 0
	})
}

func (c *CPUBackend) Sum(n, minChunk int, fn func(start, end int) float64) float64 {
	if n <= 0 {
		return 0
	}

	workers := c.chunks(n, minChunk)
	if workers == 1 {
		return fn(0, n)
	}

	chunkSize := (n + workers - 1) / workers
	partials := make([]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			partials[worker] = fn(s, e)
		}(w, start, end)
	}

	wg.Wait()

	return floats.Sum(partials)
}
