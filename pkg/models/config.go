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

// MonitoringConfig holds the tunable constants of the monitoring engine.
// Zero values are replaced by DefaultMonitoringConfig values in WithDefaults.
type MonitoringConfig struct {
	// Check intervals per state.
	IdleInterval   time.Duration `json:"idle_interval"`
	ActiveInterval time.Duration `json:"active_interval"`
	AlertInterval  time.Duration `json:"alert_interval"`

	// IdleTimeout is how long without activity before ACTIVE falls back to IDLE.
	IdleTimeout time.Duration `json:"idle_timeout"`
	// AlertResolveDelay is how long a resolved alert keeps the engine in ALERT.
	AlertResolveDelay time.Duration `json:"alert_resolve_delay"`

	// Activity classifier heuristics.
	FirstRequestWindow time.Duration `json:"first_request_window"`
	FrequencyFactor    float64       `json:"frequency_factor"`
	PatternWindow      time.Duration `json:"pattern_window"`
	WakeLogLength      int           `json:"wake_log_length"`

	// Metric storage.
	MetricTTL       time.Duration `json:"metric_ttl"`
	HistoryLength   int           `json:"history_length"`
	HistoryTTL      time.Duration `json:"history_ttl"`
	BaselineSamples int           `json:"baseline_samples"`
	BaselineTTL     time.Duration `json:"baseline_ttl"`
	RecentBuffer    int           `json:"recent_buffer"`

	// Rule evaluation.
	ViolationTTL   time.Duration `json:"violation_ttl"`
	RuleCacheTTL   time.Duration `json:"rule_cache_ttl"`
	FloatTolerance float64       `json:"float_tolerance"`

	// Alerting.
	DedupWindow time.Duration `json:"dedup_window"`

	// Subscriber health.
	SubscriberStaleAfter   time.Duration `json:"subscriber_stale_after"`
	SubscriberMaxErrorRate float64       `json:"subscriber_max_error_rate"`

	TransitionLogLength int `json:"transition_log_length"`
}

// DefaultMonitoringConfig returns the empirically chosen defaults.
func DefaultMonitoringConfig() MonitoringConfig {
	return MonitoringConfig{
		IdleInterval:           300 * time.Second,
		ActiveInterval:         120 * time.Second,
		AlertInterval:          15 * time.Second,
		IdleTimeout:            900 * time.Second,
		AlertResolveDelay:      900 * time.Second,
		FirstRequestWindow:     600 * time.Second,
		FrequencyFactor:        3.0,
		PatternWindow:          7 * 24 * time.Hour,
		WakeLogLength:          1000,
		MetricTTL:              300 * time.Second,
		HistoryLength:          100,
		HistoryTTL:             24 * time.Hour,
		BaselineSamples:        288,
		BaselineTTL:            24 * time.Hour,
		RecentBuffer:           256,
		ViolationTTL:           time.Hour,
		RuleCacheTTL:           60 * time.Second,
		FloatTolerance:         1e-4,
		DedupWindow:            time.Hour,
		SubscriberStaleAfter:   300 * time.Second,
		SubscriberMaxErrorRate: 0.10,
		TransitionLogLength:    100,
	}
}

// WithDefaults fills every zero field from DefaultMonitoringConfig.
func (c MonitoringConfig) WithDefaults() MonitoringConfig {
	d := DefaultMonitoringConfig()

	setDuration := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}

	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}

	setFloat := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}

	setDuration(&c.IdleInterval, d.IdleInterval)
	setDuration(&c.ActiveInterval, d.ActiveInterval)
	setDuration(&c.AlertInterval, d.AlertInterval)
	setDuration(&c.IdleTimeout, d.IdleTimeout)
	setDuration(&c.AlertResolveDelay, d.AlertResolveDelay)
	setDuration(&c.FirstRequestWindow, d.FirstRequestWindow)
	setFloat(&c.FrequencyFactor, d.FrequencyFactor)
	setDuration(&c.PatternWindow, d.PatternWindow)
	setInt(&c.WakeLogLength, d.WakeLogLength)
	setDuration(&c.MetricTTL, d.MetricTTL)
	setInt(&c.HistoryLength, d.HistoryLength)
	setDuration(&c.HistoryTTL, d.HistoryTTL)
	setInt(&c.BaselineSamples, d.BaselineSamples)
	setDuration(&c.BaselineTTL, d.BaselineTTL)
	setInt(&c.RecentBuffer, d.RecentBuffer)
	setDuration(&c.ViolationTTL, d.ViolationTTL)
	setDuration(&c.RuleCacheTTL, d.RuleCacheTTL)
	setFloat(&c.FloatTolerance, d.FloatTolerance)
	setDuration(&c.DedupWindow, d.DedupWindow)
	setDuration(&c.SubscriberStaleAfter, d.SubscriberStaleAfter)
	setFloat(&c.SubscriberMaxErrorRate, d.SubscriberMaxErrorRate)
	setInt(&c.TransitionLogLength, d.TransitionLogLength)

	return c
}
