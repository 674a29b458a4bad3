package alerts

import (
	"math"
	"strings"

	"github.com/carverauto/pulse/pkg/models"
)

// Application errors at or above these counts are at least HIGH.
const (
	affectedUsersHigh     = 10
	errorCountHigh        = 5
	affectedUsersCritical = 100
	errorCountCritical    = 50
)

// errorSeverity maps error keywords to the least severity they imply.
var errorSeverity = []struct {
	keyword  string
	priority models.AlertPriority
}{
	{"corruption", models.PriorityCritical},
	{"data_loss", models.PriorityCritical},
	{"outofmemory", models.PriorityCritical},
	{"out of memory", models.PriorityCritical},
	{"security", models.PriorityCritical},
	{"database", models.PriorityHigh},
	{"connection", models.PriorityHigh},
	{"deadlock", models.PriorityHigh},
	{"timeout", models.PriorityMedium},
}

// ComputeSeverity derives an alert's priority from its category and values.
//
// System resource alerts grade the relative overage of the threshold
// (above 50% critical, above 20% high). Performance alerts grade the ratio
// of value to threshold (above 2x critical, above 1.5x high). Application
// and database errors grade by keyword and blast radius. Anything that
// cannot be graded keeps a valid preset priority, else MEDIUM.
func ComputeSeverity(alert *models.Alert) models.AlertPriority {
	switch alert.Category {
	case models.CategorySystem:
		if p, ok := overageSeverity(alert); ok {
			return p
		}
	case models.CategoryPerformance:
		if p, ok := ratioSeverity(alert); ok {
			return p
		}
	case models.CategoryApplication, models.CategoryDatabase:
		if alert.RuleID == nil {
			return applicationSeverity(alert)
		}

		if p, ok := overageSeverity(alert); ok {
			return p
		}
	case models.CategoryBusiness, models.CategorySecurity:
	}

	if alert.Priority.Valid() {
		return alert.Priority
	}

	return models.PriorityMedium
}

func overageSeverity(alert *models.Alert) (models.AlertPriority, bool) {
	if alert.MetricValue == nil || alert.ThresholdValue == nil || *alert.ThresholdValue == 0 {
		return "", false
	}

	overage := math.Abs(*alert.MetricValue-*alert.ThresholdValue) / math.Abs(*alert.ThresholdValue)

	switch {
	case overage > 0.5:
		return models.PriorityCritical, true
	case overage > 0.2:
		return models.PriorityHigh, true
	default:
		return models.PriorityMedium, true
	}
}

func ratioSeverity(alert *models.Alert) (models.AlertPriority, bool) {
	if alert.MetricValue == nil || alert.ThresholdValue == nil || *alert.ThresholdValue <= 0 {
		return "", false
	}

	current, threshold := *alert.MetricValue, *alert.ThresholdValue

	switch {
	case current > 2*threshold:
		return models.PriorityCritical, true
	case current > 1.5*threshold:
		return models.PriorityHigh, true
	default:
		return models.PriorityMedium, true
	}
}

func applicationSeverity(alert *models.Alert) models.AlertPriority {
	md := alert.Metadata
	text := strings.ToLower(md.ErrorType + " " + alert.AlertType + " " + alert.Message)

	severity := models.PriorityMedium

	raise := func(p models.AlertPriority) {
		if p.Rank() > severity.Rank() {
			severity = p
		}
	}

	if alert.Category == models.CategoryDatabase {
		raise(models.PriorityHigh)
	}

	for _, e := range errorSeverity {
		if strings.Contains(text, e.keyword) {
			raise(e.priority)
		}
	}

	switch {
	case md.AffectedUsers > affectedUsersCritical || md.ErrorCount > errorCountCritical:
		raise(models.PriorityCritical)
	case md.AffectedUsers > affectedUsersHigh || md.ErrorCount > errorCountHigh:
		raise(models.PriorityHigh)
	}

	// A reporter may ask for more, never less.
	if alert.Priority.Valid() {
		raise(alert.Priority)
	}

	return severity
}
