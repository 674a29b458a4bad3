// Package channels implements the notification channel handlers used by the
// alert dispatcher.
package channels

import (
	"strconv"
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

// Level is the coarse severity shown by chat integrations.
type Level string

const (
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// LevelOf maps an alert priority to a Level.
func LevelOf(p models.AlertPriority) Level {
	switch p {
	case models.PriorityCritical, models.PriorityHigh:
		return Error
	case models.PriorityMedium:
		return Warning
	default:
		return Info
	}
}

// Payload is the flattened alert handed to webhook templates.
type Payload struct {
	AlertID   int64          `json:"alert_id"`
	Level     Level          `json:"level"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  string         `json:"priority"`
	Category  string         `json:"category"`
	AlertType string         `json:"alert_type"`
	Resource  string         `json:"resource"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewPayload flattens alert. Metric values and metadata extras become details.
func NewPayload(alert *models.Alert) *Payload {
	ts := alert.TriggeredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	p := &Payload{
		AlertID:   alert.ID,
		Level:     LevelOf(alert.Priority),
		Title:     alert.Title,
		Message:   alert.Message,
		Priority:  string(alert.Priority),
		Category:  string(alert.Category),
		AlertType: alert.AlertType,
		Resource:  alert.Resource,
		Source:    alert.Source,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Details:   make(map[string]any),
	}

	if alert.MetricName != "" {
		p.Details["metric"] = alert.MetricName
	}

	if alert.MetricValue != nil {
		p.Details["value"] = strconv.FormatFloat(*alert.MetricValue, 'g', -1, 64)
	}

	if alert.ThresholdValue != nil {
		p.Details["threshold"] = strconv.FormatFloat(*alert.ThresholdValue, 'g', -1, 64)
	}

	if alert.NotificationCount > 1 {
		p.Details["occurrences"] = alert.NotificationCount
	}

	for _, key := range alert.Metadata.Extra.Keys() {
		p.Details[key] = alert.Metadata.Extra.String(key)
	}

	if len(p.Details) == 0 {
		p.Details = nil
	}

	return p
}
