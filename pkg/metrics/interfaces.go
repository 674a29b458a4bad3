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

// Package metrics collects metric samples, publishes them on the update bus
// and delivers them to in-process subscribers.
package metrics

import (
	"context"

	"github.com/carverauto/pulse/pkg/models"
)

//go:generate mockgen -destination=mock_metrics.go -package=metrics github.com/carverauto/pulse/pkg/metrics Source,MetricCollector

// Source produces a set of named values. Critical sources are the cheap
// availability checks that still run while the engine is IDLE.
type Source interface {
	Name() string
	Critical() bool
	Collect(ctx context.Context) (map[string]float64, error)
}

// MetricCollector writes samples into the shared store and the update bus.
type MetricCollector interface {
	PushMetric(ctx context.Context, name string, value float64) error

	// Collect runs every registered source when full is true and only the
	// critical ones otherwise.
	Collect(ctx context.Context, full bool) (*models.CollectionReport, error)
	CollectAllMetrics(ctx context.Context) (*models.CollectionReport, error)
	CollectCriticalMetricsOnly(ctx context.Context) (*models.CollectionReport, error)

	RecomputeBaselines(ctx context.Context) (int, error)
	Baseline(ctx context.Context, name string) (*models.Baseline, error)
	History(ctx context.Context, name string, limit int) ([]models.HistoryPoint, error)
	CurrentValue(ctx context.Context, name string) (float64, error)

	// Recent returns the in-process samples for name, newest first.
	Recent(name string) []models.MetricSample
}

// Callback receives decoded metric updates from a Subscriber.
type Callback func(ctx context.Context, update models.MetricUpdate) error
