/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

const defaultSourceTimeout = 10 * time.Second

// Collector is the MetricCollector backed by a kv.Store.
type Collector struct {
	store  kv.Store
	cfg    models.MonitoringConfig
	now    func() time.Time
	recent *RecentStore

	sourceTimeout time.Duration

	mu       sync.RWMutex
	sources  []Source
	failures map[string]int64
}

var _ MetricCollector = (*Collector)(nil)

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithCollectorClock overrides the wall clock.
func WithCollectorClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.now = now
	}
}

// WithSourceTimeout bounds each source's Collect call.
func WithSourceTimeout(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.sourceTimeout = d
		}
	}
}

// NewCollector creates a collector writing into store.
func NewCollector(store kv.Store, cfg models.MonitoringConfig, opts ...CollectorOption) *Collector {
	cfg = cfg.WithDefaults()

	c := &Collector{
		store:         store,
		cfg:           cfg,
		now:           time.Now,
		recent:        NewRecentStore(cfg.RecentBuffer),
		sourceTimeout: defaultSourceTimeout,
		failures:      make(map[string]int64),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegisterSource adds src to the collection set.
func (c *Collector) RegisterSource(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sources = append(c.sources, src)
}

// SourceFailures returns the failure count per source name.
func (c *Collector) SourceFailures() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int64, len(c.failures))
	for k, v := range c.failures {
		out[k] = v
	}

	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PushMetric stores the sample and its history entry, then publishes the
// update. The store writes complete before the publish.
func (c *Collector) PushMetric(ctx context.Context, name string, value float64) error {
	if name == "" || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %q=%v", ErrInvalidMetric, name, value)
	}

	now := c.now()

	if err := c.store.Set(ctx, kv.MetricValueKey(name), formatValue(value), c.cfg.MetricTTL); err != nil {
		return fmt.Errorf("failed to store metric %s: %w", name, err)
	}

	point, err := json.Marshal(models.HistoryPoint{Value: value, Timestamp: now.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode history point: %w", err)
	}

	if err := c.store.LPushTrim(ctx, kv.MetricHistoryKey(name), string(point), c.cfg.HistoryLength, c.cfg.HistoryTTL); err != nil {
		return fmt.Errorf("failed to append history for %s: %w", name, err)
	}

	if err := c.store.SAdd(ctx, kv.MetricIndexKey, name, 0); err != nil {
		log.Printf("Error indexing metric %s: %v", name, err)
	}

	c.recent.Add(models.MetricSample{Name: name, Value: value, Timestamp: now})

	payload, err := json.Marshal(models.MetricUpdate{Name: name, Value: value, Timestamp: now.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode metric update: %w", err)
	}

	if err := c.store.Publish(ctx, kv.TopicMetricUpdates, payload); err != nil {
		return fmt.Errorf("failed to publish metric %s: %w", name, err)
	}

	return nil
}

func (c *Collector) Collect(ctx context.Context, full bool) (*models.CollectionReport, error) {
	if full {
		return c.CollectAllMetrics(ctx)
	}

	return c.CollectCriticalMetricsOnly(ctx)
}

func (c *Collector) CollectAllMetrics(ctx context.Context) (*models.CollectionReport, error) {
	return c.collect(ctx, true)
}

func (c *Collector) CollectCriticalMetricsOnly(ctx context.Context) (*models.CollectionReport, error) {
	return c.collect(ctx, false)
}

// collect runs each selected source in isolation. A failing source is
// logged and listed in the report; the others still report.
func (c *Collector) collect(ctx context.Context, full bool) (*models.CollectionReport, error) {
	c.mu.RLock()
	sources := make([]Source, 0, len(c.sources))

	for _, src := range c.sources {
		if full || src.Critical() {
			sources = append(sources, src)
		}
	}
	c.mu.RUnlock()

	report := &models.CollectionReport{
		Full:      full,
		Metrics:   make(map[string]float64),
		StartedAt: c.now(),
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		values, err := c.runSource(ctx, src)
		if err != nil {
			log.Printf("Metric source %s failed: %v", src.Name(), err)
			c.recordFailure(src.Name())
			report.Failed = append(report.Failed, src.Name())

			continue
		}

		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			if err := c.PushMetric(ctx, name, values[name]); err != nil {
				log.Printf("Error pushing metric %s from %s: %v", name, src.Name(), err)
				continue
			}

			report.Metrics[name] = values[name]
		}
	}

	report.Duration = c.now().Sub(report.StartedAt)

	return report, nil
}

func (c *Collector) runSource(ctx context.Context, src Source) (values map[string]float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errSourcePanic, r)
		}
	}()

	return src.Collect(ctx)
}

func (c *Collector) recordFailure(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures[name]++
}

// RecomputeBaselines stores the mean of the most recent history samples for
// every known metric and returns how many baselines were written.
func (c *Collector) RecomputeBaselines(ctx context.Context) (int, error) {
	names, err := c.store.SMembers(ctx, kv.MetricIndexKey)
	if err != nil {
		return 0, fmt.Errorf("failed to list metrics: %w", err)
	}

	written := 0

	for _, name := range names {
		points, err := c.History(ctx, name, c.cfg.BaselineSamples)
		if err != nil {
			log.Printf("Error reading history for %s: %v", name, err)
			continue
		}

		if len(points) == 0 {
			continue
		}

		var sum float64
		for _, p := range points {
			sum += p.Value
		}

		baseline := models.Baseline{
			MetricName:  name,
			Average:     sum / float64(len(points)),
			SampleCount: len(points),
			Window:      points[0].Timestamp.Sub(points[len(points)-1].Timestamp).String(),
			ComputedAt:  c.now().UTC(),
		}

		data, err := json.Marshal(baseline)
		if err != nil {
			return written, fmt.Errorf("failed to encode baseline for %s: %w", name, err)
		}

		if err := c.store.Set(ctx, kv.MetricBaselineKey(name), string(data), c.cfg.BaselineTTL); err != nil {
			return written, fmt.Errorf("failed to store baseline for %s: %w", name, err)
		}

		written++
	}

	log.Printf("Recomputed baselines for %d metrics", written)

	return written, nil
}

func (c *Collector) Baseline(ctx context.Context, name string) (*models.Baseline, error) {
	raw, err := c.store.Get(ctx, kv.MetricBaselineKey(name))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoBaseline, name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read baseline for %s: %w", name, err)
	}

	var b models.Baseline
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoBaseline, name, err)
	}

	return &b, nil
}

// History returns up to limit history points, newest first. A limit of
// zero or less returns everything retained.
func (c *Collector) History(ctx context.Context, name string, limit int) ([]models.HistoryPoint, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := c.store.LRange(ctx, kv.MetricHistoryKey(name), 0, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", name, err)
	}

	points := make([]models.HistoryPoint, 0, len(raw))

	for _, item := range raw {
		var p models.HistoryPoint
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			continue
		}

		points = append(points, p)
	}

	return points, nil
}

func (c *Collector) CurrentValue(ctx context.Context, name string) (float64, error) {
	return ReadCurrentValue(ctx, c.store, name)
}

func (c *Collector) Recent(name string) []models.MetricSample {
	return c.recent.Points(name)
}

// ReadCurrentValue reads the live sample for name straight from the store.
// Missing or unparseable values return ErrNoValue.
func ReadCurrentValue(ctx context.Context, store kv.Store, name string) (float64, error) {
	raw, err := store.Get(ctx, kv.MetricValueKey(name))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrNoValue, name)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read metric %s: %w", name, err)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNoValue, name, err)
	}

	return v, nil
}
