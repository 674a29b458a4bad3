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

// Package rules stores threshold rules and turns sustained violations into alerts.
package rules

import (
	"context"
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

//go:generate mockgen -destination=mock_rules.go -package=rules github.com/carverauto/pulse/pkg/rules RuleStore,RuleEvaluator,AlertCreator

// RuleStore persists AlertRules.
type RuleStore interface {
	Create(ctx context.Context, rule *models.AlertRule) error
	Get(ctx context.Context, id int64) (*models.AlertRule, error)
	GetByName(ctx context.Context, name string) (*models.AlertRule, error)
	List(ctx context.Context) ([]models.AlertRule, error)
	ListEnabled(ctx context.Context) ([]models.AlertRule, error)
	Update(ctx context.Context, rule *models.AlertRule) error
	Delete(ctx context.Context, id int64) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
}

// RuleEvaluator tracks per-rule violations against incoming samples.
type RuleEvaluator interface {
	// Rules returns the enabled rules, reloading when the cache is older
	// than its TTL or force is set.
	Rules(ctx context.Context, force bool) ([]models.AlertRule, error)
	Evaluate(ctx context.Context, metric string, value float64, ts time.Time) error
	ViolationsReadyForAlert(ctx context.Context) ([]models.ReadyViolation, error)
	StartCooldown(ctx context.Context, ruleID int64, seconds int) error
	InCooldown(ctx context.Context, ruleID int64) (bool, error)
	ActiveViolations(ctx context.Context) ([]models.RuleViolation, error)
	ClearViolation(ctx context.Context, ruleID int64) error
}

// AlertCreator is the part of the alert service the Processor needs.
type AlertCreator interface {
	CreateAlert(ctx context.Context, alert *models.Alert, autoNotify, deduplicate bool) (*models.Alert, error)
}
