// Package models pkg/models/metrics.go
package models

import "time"

// MetricSample is a single observation of a named metric.
type MetricSample struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryPoint is one entry of a metric's bounded history.
type HistoryPoint struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Baseline is the rolling average of a metric's recent history.
type Baseline struct {
	MetricName  string    `json:"metric_name"`
	Average     float64   `json:"average"`
	SampleCount int       `json:"sample_count"`
	Window      string    `json:"window"`
	ComputedAt  time.Time `json:"computed_at"`
}

// MetricUpdate is the payload published on the metric bus. Timestamp is
// encoded as RFC3339 with nanoseconds.
type MetricUpdate struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// CollectionReport summarizes one collection pass across all sources.
type CollectionReport struct {
	Full      bool               `json:"full"`
	Metrics   map[string]float64 `json:"metrics"`
	Failed    []string           `json:"failed,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
}
