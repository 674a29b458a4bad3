// Package sources provides the built-in metric sources.
package sources

import (
	"context"

	"github.com/carverauto/pulse/pkg/metrics"
)

// CollectFunc produces metric values for a FuncSource.
type CollectFunc func(ctx context.Context) (map[string]float64, error)

// FuncSource adapts a function into a metrics.Source. Applications use it to
// expose domain counters such as queue depth or error totals.
type FuncSource struct {
	name     string
	critical bool
	fn       CollectFunc
}

var _ metrics.Source = (*FuncSource)(nil)

func NewFuncSource(name string, critical bool, fn CollectFunc) *FuncSource {
	return &FuncSource{name: name, critical: critical, fn: fn}
}

func (s *FuncSource) Name() string { return s.name }

func (s *FuncSource) Critical() bool { return s.critical }

func (s *FuncSource) Collect(ctx context.Context) (map[string]float64, error) {
	if s.fn == nil {
		return nil, errNilFunc
	}

	return s.fn(ctx)
}
