// Package compute provides data-parallel execution backends.
//
// A [Backend] partitions an index range [0, n) into contiguous chunks and
// runs one worker per chunk:
//
//   - [CPUBackend]: one goroutine per chunk, sized to runtime.NumCPU()
//   - [SerialBackend]: runs the whole range on the calling goroutine
//
// Both calls return only after every chunk has finished, so consecutive
// calls are separated by a hard barrier.
//
// # Reductions
//
// [Backend.Sum] collects one partial sum per chunk and combines them once,
// in chunk order, after all workers are done:
//
//	backend := compute.NewCPUBackend(0)
//	total := backend.Sum(len(xs), 64, func(start, end int) float64 {
//	    s := 0.0
//	    for i := start; i < end; i++ {
//	        s += xs[i]
//	    }
//	    return s
//	})
package compute
