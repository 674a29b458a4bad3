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

// Package state implements the IDLE/ACTIVE/ALERT monitoring state machine.
package state

//go:generate mockgen -destination=mock_state.go -package=state github.com/carverauto/pulse/pkg/state StateMachine

import (
	"context"
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

// StateMachine coordinates the monitoring cadence. All state lives in the
// shared store so several engine processes observe the same mode.
type StateMachine interface {
	// Init seeds IDLE when the store holds no state yet.
	Init(ctx context.Context) error

	// Current returns the current state. A fresh store reports IDLE.
	Current(ctx context.Context) (models.MonitoringState, error)

	// CheckInterval is how long the caller should wait before the next tick.
	CheckInterval(ctx context.Context) (time.Duration, error)

	// ShouldCollectFullMetrics reports whether the state is not IDLE.
	ShouldCollectFullMetrics(ctx context.Context) (bool, error)

	// Wake refreshes the last-activity marker and moves IDLE to ACTIVE.
	// It reports whether a transition happened.
	Wake(ctx context.Context, reason string) (bool, error)

	// EnterAlertState records alertRef, clears any pending resolution and
	// moves to ALERT.
	EnterAlertState(ctx context.Context, alertRef, reason string) error

	// ResolveAlert stamps the resolution time. The state only changes on a
	// later CheckAndTransition.
	ResolveAlert(ctx context.Context) error

	// CheckAndTransition applies the timer-driven edges. It returns the
	// transition taken, or nil.
	CheckAndTransition(ctx context.Context) (*models.Transition, error)

	// ForceState sets the state unconditionally.
	ForceState(ctx context.Context, state models.MonitoringState, reason string) error

	Snapshot(ctx context.Context) (*models.StateSnapshot, error)
	History(ctx context.Context, limit int) ([]models.Transition, error)
	Stats(ctx context.Context) (*models.StateStats, error)

	// OnTransition registers fn to be called after every transition.
	OnTransition(fn func(models.Transition))
}
