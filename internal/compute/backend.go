package compute

// Backend runs a function over a partitioned index range.
type Backend interface {
	Name() string
	Workers() int
	// For calls fn once per chunk of [0, n) and waits for all chunks.
	For(n, minChunk int, fn func(start, end int))
	// Sum is For with a per-chunk partial result, combined after all chunks finish.
	Sum(n, minChunk int, fn func(start, end int) float64) float64
}

// Default returns a CPU backend using every available core.
func Default() Backend {
	return NewCPUBackend(0)
}

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string { return "serial" }
func (s *SerialBackend) Workers() int { return 1 }

func (s *SerialBackend) For(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	fn(0, n)
}

func (s *SerialBackend) Sum(n, minChunk int, fn func(start, end int) float64) float64 {
	if n <= 0 {
		return 0
	}
	return fn(0, n)
}
