package rules

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

// AlertSource is recorded as the source of every rule-driven alert.
const AlertSource = "rule_evaluator"

// Processor raises alerts for ready violations and starts their cooldown.
type Processor struct {
	evaluator RuleEvaluator
	alerts    AlertCreator
}

func NewProcessor(evaluator RuleEvaluator, alerts AlertCreator) *Processor {
	return &Processor{evaluator: evaluator, alerts: alerts}
}

// Process creates one alert per ready violation and returns how many were
// raised. The cooldown starts only after the alert is stored, so a failed
// create is retried on the next tick.
func (p *Processor) Process(ctx context.Context) (int, error) {
	ready, err := p.evaluator.ViolationsReadyForAlert(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check violations: %w", err)
	}

	raised := 0

	for i := range ready {
		rv := &ready[i]

		alert, err := p.alerts.CreateAlert(ctx, BuildAlert(rv), true, true)
		if err != nil {
			log.Printf("Error creating alert for rule %s: %v", rv.Rule.Name, err)
			continue
		}

		if err := p.evaluator.StartCooldown(ctx, rv.Rule.ID, rv.Rule.CooldownSeconds); err != nil {
			log.Printf("Error starting cooldown for rule %s: %v", rv.Rule.Name, err)
		}

		log.Printf("Rule %s raised alert %d (%s)", rv.Rule.Name, alert.ID, alert.Priority)

		raised++
	}

	return raised, nil
}

// BuildAlert describes a ready violation as an alert. The type groups alerts
// by metric and the resource is the rule name, which together form the
// deduplication key.
func BuildAlert(rv *models.ReadyViolation) *models.Alert {
	rule := rv.Rule
	ruleID := rule.ID
	value := rv.CurrentValue
	threshold := rule.Threshold

	message := fmt.Sprintf("%s is %g (%s %g) for %s", rule.MetricName, value, rule.Operator, threshold,
		rv.Elapsed.Truncate(time.Second))
	if rule.Description != "" {
		message = rule.Description + ": " + message
	}

	alert := &models.Alert{
		AlertType:      "threshold:" + rule.MetricName,
		Title:          fmt.Sprintf("%s threshold exceeded", rule.Name),
		Message:        message,
		Priority:       rule.Severity,
		Category:       rule.Category,
		Status:         models.AlertStatusActive,
		Source:         AlertSource,
		Resource:       rule.Name,
		RuleID:         &ruleID,
		MetricName:     rule.MetricName,
		MetricValue:    &value,
		ThresholdValue: &threshold,
		Channels:       append([]models.AlertChannel(nil), rule.Channels...),
	}

	_ = alert.Metadata.Extra.Set("operator", string(rule.Operator))
	_ = alert.Metadata.Extra.Set("duration_seconds", rule.DurationSeconds)
	_ = alert.Metadata.Extra.Set("first_exceeded_at", rv.Violation.FirstExceededAt.Format(time.RFC3339))

	return alert
}
