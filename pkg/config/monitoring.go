package config

import (
	"fmt"

	"github.com/carverauto/pulse/pkg/models"
)

// MonitoringSettings is the file form of models.MonitoringConfig. Every
// field is optional; zero values keep the built-in defaults.
type MonitoringSettings struct {
	IdleInterval       Duration `json:"idle_interval" toml:"idle_interval"`
	ActiveInterval     Duration `json:"active_interval" toml:"active_interval"`
	AlertInterval      Duration `json:"alert_interval" toml:"alert_interval"`
	IdleTimeout        Duration `json:"idle_timeout" toml:"idle_timeout"`
	AlertResolveDelay  Duration `json:"alert_resolve_delay" toml:"alert_resolve_delay"`
	FirstRequestWindow Duration `json:"first_request_window" toml:"first_request_window"`
	FrequencyFactor    float64  `json:"frequency_factor" toml:"frequency_factor"`
	PatternWindow      Duration `json:"pattern_window" toml:"pattern_window"`
	WakeLogLength      int      `json:"wake_log_length" toml:"wake_log_length"`

	MetricTTL       Duration `json:"metric_ttl" toml:"metric_ttl"`
	HistoryLength   int      `json:"history_length" toml:"history_length"`
	HistoryTTL      Duration `json:"history_ttl" toml:"history_ttl"`
	BaselineSamples int      `json:"baseline_samples" toml:"baseline_samples"`
	BaselineTTL     Duration `json:"baseline_ttl" toml:"baseline_ttl"`
	RecentBuffer    int      `json:"recent_buffer" toml:"recent_buffer"`

	ViolationTTL   Duration `json:"violation_ttl" toml:"violation_ttl"`
	RuleCacheTTL   Duration `json:"rule_cache_ttl" toml:"rule_cache_ttl"`
	FloatTolerance float64  `json:"float_tolerance" toml:"float_tolerance"`

	DedupWindow Duration `json:"dedup_window" toml:"dedup_window"`

	SubscriberStaleAfter   Duration `json:"subscriber_stale_after" toml:"subscriber_stale_after"`
	SubscriberMaxErrorRate float64  `json:"subscriber_max_error_rate" toml:"subscriber_max_error_rate"`

	TransitionLogLength int `json:"transition_log_length" toml:"transition_log_length"`
}

// Model converts the settings into a fully defaulted MonitoringConfig.
func (m MonitoringSettings) Model() models.MonitoringConfig {
	cfg := models.MonitoringConfig{
		IdleInterval:           m.IdleInterval.Std(),
		ActiveInterval:         m.ActiveInterval.Std(),
		AlertInterval:          m.AlertInterval.Std(),
		IdleTimeout:            m.IdleTimeout.Std(),
		AlertResolveDelay:      m.AlertResolveDelay.Std(),
		FirstRequestWindow:     m.FirstRequestWindow.Std(),
		FrequencyFactor:        m.FrequencyFactor,
		PatternWindow:          m.PatternWindow.Std(),
		WakeLogLength:          m.WakeLogLength,
		MetricTTL:              m.MetricTTL.Std(),
		HistoryLength:          m.HistoryLength,
		HistoryTTL:             m.HistoryTTL.Std(),
		BaselineSamples:        m.BaselineSamples,
		BaselineTTL:            m.BaselineTTL.Std(),
		RecentBuffer:           m.RecentBuffer,
		ViolationTTL:           m.ViolationTTL.Std(),
		RuleCacheTTL:           m.RuleCacheTTL.Std(),
		FloatTolerance:         m.FloatTolerance,
		DedupWindow:            m.DedupWindow.Std(),
		SubscriberStaleAfter:   m.SubscriberStaleAfter.Std(),
		SubscriberMaxErrorRate: m.SubscriberMaxErrorRate,
		TransitionLogLength:    m.TransitionLogLength,
	}

	return cfg.WithDefaults()
}

// Validate rejects negative values and an inverted interval ordering.
func (m MonitoringSettings) Validate() error {
	durations := map[string]Duration{
		"idle_interval":          m.IdleInterval,
		"active_interval":        m.ActiveInterval,
		"alert_interval":         m.AlertInterval,
		"idle_timeout":           m.IdleTimeout,
		"alert_resolve_delay":    m.AlertResolveDelay,
		"first_request_window":   m.FirstRequestWindow,
		"pattern_window":         m.PatternWindow,
		"metric_ttl":             m.MetricTTL,
		"history_ttl":            m.HistoryTTL,
		"baseline_ttl":           m.BaselineTTL,
		"violation_ttl":          m.ViolationTTL,
		"rule_cache_ttl":         m.RuleCacheTTL,
		"dedup_window":           m.DedupWindow,
		"subscriber_stale_after": m.SubscriberStaleAfter,
	}

	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", errInvalidConfig, name)
		}
	}

	if m.FrequencyFactor < 0 || m.FloatTolerance < 0 {
		return fmt.Errorf("%w: factors must not be negative", errInvalidConfig)
	}

	if m.SubscriberMaxErrorRate < 0 || m.SubscriberMaxErrorRate > 1 {
		return fmt.Errorf("%w: subscriber_max_error_rate must be within [0,1]", errInvalidConfig)
	}

	cfg := m.Model()
	if cfg.AlertInterval > cfg.ActiveInterval || cfg.ActiveInterval > cfg.IdleInterval {
		return fmt.Errorf("%w: intervals must satisfy alert <= active <= idle", errInvalidConfig)
	}

	return nil
}
