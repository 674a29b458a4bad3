package sources

import (
	"context"
	"runtime"

	"github.com/carverauto/pulse/pkg/metrics"
)

// RuntimeSource reports Go runtime statistics of the engine process.
type RuntimeSource struct {
	critical bool
}

var _ metrics.Source = (*RuntimeSource)(nil)

// NewRuntimeSource creates a RuntimeSource. Reading MemStats stops the world
// briefly, so it is normally registered as non-critical.
func NewRuntimeSource(critical bool) *RuntimeSource {
	return &RuntimeSource{critical: critical}
}

func (*RuntimeSource) Name() string { return "runtime" }

func (s *RuntimeSource) Critical() bool { return s.critical }

func (*RuntimeSource) Collect(_ context.Context) (map[string]float64, error) {
	var ms runtime.MemStats

	runtime.ReadMemStats(&ms)

	return map[string]float64{
		"runtime_goroutines":       float64(runtime.NumGoroutine()),
		"runtime_heap_alloc_bytes": float64(ms.HeapAlloc),
		"runtime_heap_objects":     float64(ms.HeapObjects),
		"runtime_gc_count":         float64(ms.NumGC),
		"runtime_gc_pause_ms":      float64(ms.PauseTotalNs) / 1e6,
	}, nil
}
