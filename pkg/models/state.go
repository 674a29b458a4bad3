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

package models

import "time"

// MonitoringState is the process-wide operating mode of the engine.
type MonitoringState string

const (
	StateIdle   MonitoringState = "IDLE"
	StateActive MonitoringState = "ACTIVE"
	StateAlert  MonitoringState = "ALERT"
)

// Valid reports whether s is a known state.
func (s MonitoringState) Valid() bool {
	switch s {
	case StateIdle, StateActive, StateAlert:
		return true
	default:
		return false
	}
}

// RecordVersion is the schema version written into persisted history records.
const RecordVersion = 1

// Transition is an audit record of one state change.
type Transition struct {
	Version   int             `json:"v"`
	ID        string          `json:"id"`
	From      MonitoringState `json:"from"`
	To        MonitoringState `json:"to"`
	Reason    string          `json:"reason"`
	Timestamp time.Time       `json:"timestamp"`
	// Duration spent in From before this transition.
	Duration time.Duration `json:"duration"`
}

// WakeEvent is an audit record of a wake decision by the activity classifier.
type WakeEvent struct {
	Version   int       `json:"v"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Reason    string    `json:"reason"`
	Hour      int       `json:"hour"`
}

// StateSnapshot describes the current state machine status.
type StateSnapshot struct {
	State           MonitoringState `json:"state"`
	CheckInterval   time.Duration   `json:"check_interval"`
	EnteredAt       time.Time       `json:"entered_at"`
	LastActivity    *time.Time      `json:"last_activity,omitempty"`
	LastAlertRef    string          `json:"last_alert_ref,omitempty"`
	AlertResolvedAt *time.Time      `json:"alert_resolved_at,omitempty"`
	FullMetrics     bool            `json:"full_metrics"`
}

// StateStats aggregates transition counts and time spent per state.
type StateStats struct {
	Current          MonitoringState                   `json:"current"`
	CurrentAge       time.Duration                     `json:"current_age"`
	TransitionCounts map[MonitoringState]int64         `json:"transition_counts"`
	TimeInState      map[MonitoringState]time.Duration `json:"time_in_state"`
}

// WakeStats counts wake decisions by reason.
type WakeStats struct {
	TotalWakes int64            `json:"total_wakes"`
	ByReason   map[string]int64 `json:"by_reason"`
}
