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

// AlertStatus represents the lifecycle status of an alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusSuppressed   AlertStatus = "suppressed"
	AlertStatusExpired      AlertStatus = "expired"
)

// AlertPriority represents the severity of an alert or rule.
type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

// Rank orders priorities from low (1) to critical (4). Unknown values rank 0.
func (p AlertPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p AlertPriority) Valid() bool {
	return p.Rank() > 0
}

// AlertCategory groups alerts by the kind of condition that raised them.
type AlertCategory string

const (
	CategorySystem      AlertCategory = "system"
	CategoryPerformance AlertCategory = "performance"
	CategoryApplication AlertCategory = "application"
	CategoryDatabase    AlertCategory = "database"
	CategoryBusiness    AlertCategory = "business"
	CategorySecurity    AlertCategory = "security"
)

// AlertChannel is a notification channel an alert can be routed to.
type AlertChannel string

const (
	ChannelEmail     AlertChannel = "email"
	ChannelSMS       AlertChannel = "sms"
	ChannelWebhook   AlertChannel = "webhook"
	ChannelSlack     AlertChannel = "slack"
	ChannelDiscord   AlertChannel = "discord"
	ChannelDashboard AlertChannel = "dashboard"
)

// KnownChannel reports whether c is one of the enumerated channels.
func KnownChannel(c AlertChannel) bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWebhook, ChannelSlack, ChannelDiscord, ChannelDashboard:
		return true
	default:
		return false
	}
}

// Alert is a reported incident.
type Alert struct {
	ID        int64         `json:"id"`
	AlertType string        `json:"alert_type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Priority  AlertPriority `json:"priority"`
	Category  AlertCategory `json:"category"`
	Status    AlertStatus   `json:"status"`
	Source    string        `json:"source"`
	Resource  string        `json:"resource"`
	RuleID    *int64        `json:"rule_id,omitempty"`

	MetricName     string   `json:"metric_name,omitempty"`
	MetricValue    *float64 `json:"metric_value,omitempty"`
	ThresholdValue *float64 `json:"threshold_value,omitempty"`

	Metadata Metadata       `json:"metadata"`
	Channels []AlertChannel `json:"channels,omitempty"`

	NotificationCount  int        `json:"notification_count"`
	NotificationSentAt *time.Time `json:"notification_sent_at,omitempty"`

	TriggeredAt     time.Time `json:"triggered_at"`
	LastTriggeredAt time.Time `json:"last_triggered_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	AcknowledgedBy    string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt    *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedNotes string     `json:"acknowledged_notes,omitempty"`

	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`

	SuppressedBy     string     `json:"suppressed_by,omitempty"`
	SuppressedAt     *time.Time `json:"suppressed_at,omitempty"`
	SuppressedUntil  *time.Time `json:"suppressed_until,omitempty"`
	SuppressedReason string     `json:"suppressed_reason,omitempty"`
}

// AlertFilter narrows alert queries.
type AlertFilter struct {
	Status    *AlertStatus   `json:"status,omitempty"`
	Priority  *AlertPriority `json:"priority,omitempty"`
	Category  *AlertCategory `json:"category,omitempty"`
	AlertType string         `json:"alert_type,omitempty"`
	Resource  string         `json:"resource,omitempty"`
	Since     *time.Time     `json:"since,omitempty"`
	Until     *time.Time     `json:"until,omitempty"`
	Limit     int            `json:"limit,omitempty"`
}

// DeliveryResult records the outcome of sending an alert to one channel.
type DeliveryResult struct {
	AlertID int64        `json:"alert_id"`
	Channel AlertChannel `json:"channel"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	SentAt  time.Time    `json:"sent_at"`
}

// AlertPatterns aggregates alerts over a trailing window.
type AlertPatterns struct {
	Days                     int            `json:"days"`
	Total                    int            `json:"total"`
	ByType                   map[string]int `json:"by_type"`
	ByPriority               map[string]int `json:"by_priority"`
	ByCategory               map[string]int `json:"by_category"`
	ByHour                   map[int]int    `json:"by_hour"`
	Resolved                 int            `json:"resolved"`
	AverageResolutionMinutes float64        `json:"average_resolution_minutes"`
}

// AnomalyReport is an application error reported directly, outside of rule evaluation.
type AnomalyReport struct {
	ErrorType     string         `json:"error_type"`
	Message       string         `json:"message"`
	Resource      string         `json:"resource"`
	Source        string         `json:"source"`
	StackTrace    string         `json:"stack_trace,omitempty"`
	AffectedUsers int            `json:"affected_users,omitempty"`
	ErrorCount    int            `json:"error_count,omitempty"`
	Severity      string         `json:"severity,omitempty"`
	Channels      []AlertChannel `json:"channels,omitempty"`
}
