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

// Package activity decides whether an inbound request is meaningful enough
// to wake the monitoring engine.
package activity

//go:generate mockgen -destination=mock_activity.go -package=activity github.com/carverauto/pulse/pkg/activity RequestClassifier

import (
	"context"

	"github.com/carverauto/pulse/pkg/models"
)

// RequestClassifier classifies requests and maintains the learned patterns
// used by the anomaly heuristics.
type RequestClassifier interface {
	// Classify never fails. Store errors degrade to a non-waking result.
	Classify(ctx context.Context, method, path string) (wake bool, reason string)

	// RecomputeBaselines refreshes the per-path request rate baselines and
	// returns how many paths were updated.
	RecomputeBaselines(ctx context.Context) (int, error)

	RecentWakeEvents(ctx context.Context, limit int) ([]models.WakeEvent, error)
	Stats(ctx context.Context) (*models.WakeStats, error)
}
