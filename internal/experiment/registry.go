package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/nbodysim/internal/compute"
)

type Registry struct {
	backends map[string]func(workers int) compute.Backend
}

func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[string]func(int) compute.Backend),
	}

	r.backends["cpu"] = func(workers int) compute.Backend { return compute.NewCPUBackend(workers) }
	r.backends["serial"] = func(int) compute.Backend { return compute.NewSerialBackend() }

	return r
}

func (r *Registry) GetBackend(name string, workers int) (compute.Backend, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, r.Backends())
	}
	return fn(workers), nil
}

func (r *Registry) Backends() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
