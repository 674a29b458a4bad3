package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/models"
)

// RuleSpec is the file representation of a rule.
type RuleSpec struct {
	Name            string   `json:"name" toml:"name"`
	Description     string   `json:"description" toml:"description"`
	MetricName      string   `json:"metric_name" toml:"metric_name"`
	Operator        string   `json:"operator" toml:"operator"`
	Threshold       float64  `json:"threshold" toml:"threshold"`
	DurationSeconds int      `json:"duration_seconds" toml:"duration_seconds"`
	CooldownSeconds int      `json:"cooldown_seconds" toml:"cooldown_seconds"`
	Severity        string   `json:"severity" toml:"severity"`
	Category        string   `json:"category" toml:"category"`
	Channels        []string `json:"channels" toml:"channels"`
	Enabled         *bool    `json:"enabled" toml:"enabled"`
}

// RuleFile is the top-level document accepted by LoadRuleFile.
type RuleFile struct {
	Rules []RuleSpec `json:"rules" toml:"rules"`
}

// Rule converts the file form into a model. Rules are enabled unless stated otherwise.
func (s RuleSpec) Rule() models.AlertRule {
	rule := models.AlertRule{
		Name:            s.Name,
		Description:     s.Description,
		MetricName:      s.MetricName,
		Operator:        models.Operator(s.Operator),
		Threshold:       s.Threshold,
		DurationSeconds: s.DurationSeconds,
		CooldownSeconds: s.CooldownSeconds,
		Severity:        models.AlertPriority(s.Severity),
		Category:        models.AlertCategory(s.Category),
		Enabled:         s.Enabled == nil || *s.Enabled,
	}

	for _, ch := range s.Channels {
		rule.Channels = append(rule.Channels, models.AlertChannel(ch))
	}

	return rule
}

// LoadRuleFile reads rule definitions from a JSON or TOML file and validates
// each of them.
func LoadRuleFile(path string) ([]models.AlertRule, error) {
	var file RuleFile
	if err := config.LoadFile(path, &file); err != nil {
		return nil, err
	}

	out := make([]models.AlertRule, 0, len(file.Rules))

	for i, spec := range file.Rules {
		rule := spec.Rule()
		if err := Validate(&rule); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}

		out = append(out, rule)
	}

	return out, nil
}

// Import upserts rules by name and reports how many were created and updated.
func Import(ctx context.Context, store RuleStore, rules []models.AlertRule) (created, updated int, err error) {
	for i := range rules {
		rule := rules[i]

		existing, err := store.GetByName(ctx, rule.Name)

		switch {
		case errors.Is(err, ErrRuleNotFound):
			if err := store.Create(ctx, &rule); err != nil {
				return created, updated, err
			}

			created++
		case err != nil:
			return created, updated, err
		default:
			rule.ID = existing.ID
			if err := store.Update(ctx, &rule); err != nil {
				return created, updated, err
			}

			updated++
		}
	}

	return created, updated, nil
}
