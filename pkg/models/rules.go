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

// Operator is a threshold comparison operator.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual, OpNotEqual:
		return true
	default:
		return false
	}
}

// AlertRule is a monitored threshold condition on a single metric.
type AlertRule struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	MetricName      string         `json:"metric_name"`
	Operator        Operator       `json:"operator"`
	Threshold       float64        `json:"threshold"`
	DurationSeconds int            `json:"duration_seconds"`
	CooldownSeconds int            `json:"cooldown_seconds"`
	Severity        AlertPriority  `json:"severity"`
	Category        AlertCategory  `json:"category,omitempty"`
	Channels        []AlertChannel `json:"channels,omitempty"`
	Enabled         bool           `json:"enabled"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Duration returns the rule's duration requirement.
func (r *AlertRule) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// Cooldown returns the rule's cooldown window.
func (r *AlertRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// RuleViolation tracks a continuous threshold breach of one rule.
type RuleViolation struct {
	RuleID          int64     `json:"rule_id"`
	MetricName      string    `json:"metric_name"`
	CurrentValue    float64   `json:"current_value"`
	FirstExceededAt time.Time `json:"first_exceeded_at"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// ReadyViolation is a violation that satisfied duration and cooldown checks.
type ReadyViolation struct {
	Rule         AlertRule     `json:"rule"`
	Violation    RuleViolation `json:"violation"`
	CurrentValue float64       `json:"current_value"`
	Elapsed      time.Duration `json:"elapsed"`
}
