package kv

import (
	"fmt"
	"strconv"
)

// Bus topics.
const (
	TopicMetricUpdates = "metrics:updates"
	TopicTransitions   = "monitoring:transitions"
	TopicAlerts        = "alerts:events"
)

// Monitoring state keys.
const (
	StateKey           = "monitoring:state"
	StateEnteredAtKey  = "monitoring:state_entered_at"
	LastActivityKey    = "monitoring:last_activity"
	LastAlertKey       = "monitoring:last_alert"
	AlertResolvedAtKey = "monitoring:alert_resolved_at"
	TransitionLogKey   = "monitoring:transition_log"
	TransitionStatsKey = "monitoring:transition_counts"
	TimeInStateKey     = "monitoring:time_in_state_ms"
)

// Metric keys.
const (
	MetricIndexKey = "metric:index"
)

// Activity keys.
const (
	LastRequestKey = "activity:last_request"
	WakeLogKey     = "activity:wake_log"
	WakeStatsKey   = "activity:wake_counts"
	PathIndexKey   = "activity:paths"
)

func MetricValueKey(name string) string {
	return "metric:value:" + name
}

func MetricHistoryKey(name string) string {
	return "metric:history:" + name
}

func MetricBaselineKey(name string) string {
	return "metric:baseline:" + name
}

func ViolationKey(ruleID int64) string {
	return "rule:violation:" + strconv.FormatInt(ruleID, 10)
}

func CooldownKey(ruleID int64) string {
	return "rule:cooldown:" + strconv.FormatInt(ruleID, 10)
}

// ViolationPrefix is the key prefix shared by all rule violation records.
const ViolationPrefix = "rule:violation:"

// PathHoursKey holds the hours path woke the engine on one UTC day (YYYYMMDD).
func PathHoursKey(path, day string) string {
	return "activity:hours:" + path + ":" + day
}

// PathRateKey is the per-minute request counter for path in the given unix minute.
func PathRateKey(path string, unixMinute int64) string {
	return fmt.Sprintf("activity:rate:%s:%d", path, unixMinute)
}

func PathRateSamplesKey(path string) string {
	return "activity:rate_samples:" + path
}

func PathBaselineKey(path string) string {
	return "activity:baseline:" + path
}
