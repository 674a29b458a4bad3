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

package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/models"
)

const ruleColumns = `id, name, description, metric_name, operator, threshold, duration_seconds,
	cooldown_seconds, severity, category, channels, enabled, created_at, updated_at`

// SQLiteStore implements RuleStore on the alert_rules table.
type SQLiteStore struct {
	db  db.Executor
	now func() time.Time
}

var _ RuleStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a rule store over database.
func NewSQLiteStore(database db.Executor) *SQLiteStore {
	return &SQLiteStore{db: database, now: time.Now}
}

// Validate checks rule and fills defaults for severity and category.
func Validate(rule *models.AlertRule) error {
	switch {
	case rule.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	case rule.MetricName == "":
		return fmt.Errorf("%w: metric_name is required", ErrInvalidRule)
	case !rule.Operator.Valid():
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidRule, rule.Operator)
	case math.IsNaN(rule.Threshold) || math.IsInf(rule.Threshold, 0):
		return fmt.Errorf("%w: threshold must be finite", ErrInvalidRule)
	case rule.DurationSeconds < 0:
		return fmt.Errorf("%w: duration_seconds must not be negative", ErrInvalidRule)
	case rule.CooldownSeconds < 0:
		return fmt.Errorf("%w: cooldown_seconds must not be negative", ErrInvalidRule)
	}

	if rule.Severity == "" {
		rule.Severity = models.PriorityMedium
	}

	if !rule.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidRule, rule.Severity)
	}

	if rule.Category == "" {
		rule.Category = models.CategorySystem
	}

	for _, ch := range rule.Channels {
		if !models.KnownChannel(ch) {
			return fmt.Errorf("%w: unknown channel %q", ErrInvalidRule, ch)
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error

	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *SQLiteStore) Create(ctx context.Context, rule *models.AlertRule) error {
	if err := Validate(rule); err != nil {
		return err
	}

	channels, err := json.Marshal(channelsOrEmpty(rule.Channels))
	if err != nil {
		return fmt.Errorf("failed to encode channels: %w", err)
	}

	now := s.now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO alert_rules
		(name, description, metric_name, operator, threshold, duration_seconds, cooldown_seconds,
		 severity, category, channels, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.Name, rule.Description, rule.MetricName, string(rule.Operator), rule.Threshold,
		rule.DurationSeconds, rule.CooldownSeconds, string(rule.Severity), string(rule.Category),
		string(channels), rule.Enabled, now, now,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Name)
	}

	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	rule.ID = id
	rule.CreatedAt = now
	rule.UpdatedAt = now

	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*models.AlertRule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ruleColumns+" FROM alert_rules WHERE id = ?", id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}

	return rule, err
}

func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*models.AlertRule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ruleColumns+" FROM alert_rules WHERE name = ?", name)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}

	return rule, err
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.AlertRule, error) {
	return s.query(ctx, "SELECT "+ruleColumns+" FROM alert_rules ORDER BY id")
}

func (s *SQLiteStore) ListEnabled(ctx context.Context) ([]models.AlertRule, error) {
	return s.query(ctx, "SELECT "+ruleColumns+" FROM alert_rules WHERE enabled = 1 ORDER BY id")
}

func (s *SQLiteStore) Update(ctx context.Context, rule *models.AlertRule) error {
	if err := Validate(rule); err != nil {
		return err
	}

	channels, err := json.Marshal(channelsOrEmpty(rule.Channels))
	if err != nil {
		return fmt.Errorf("failed to encode channels: %w", err)
	}

	now := s.now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE alert_rules
		SET name = ?, description = ?, metric_name = ?, operator = ?, threshold = ?,
			duration_seconds = ?, cooldown_seconds = ?, severity = ?, category = ?,
			channels = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		rule.Name, rule.Description, rule.MetricName, string(rule.Operator), rule.Threshold,
		rule.DurationSeconds, rule.CooldownSeconds, string(rule.Severity), string(rule.Category),
		string(channels), rule.Enabled, now, rule.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Name)
	}

	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	if err := expectOneRow(result, rule.ID); err != nil {
		return err
	}

	rule.UpdatedAt = now

	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM alert_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	return expectOneRow(result, id)
}

func (s *SQLiteStore) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE alert_rules SET enabled = ?, updated_at = ? WHERE id = ?",
		enabled, s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	return expectOneRow(result, id)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]models.AlertRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer db.CloseRows(rows)

	var out []models.AlertRule

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row scanner) (*models.AlertRule, error) {
	var rule models.AlertRule

	var operator, severity, category, channels string

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Description,
		&rule.MetricName,
		&operator,
		&rule.Threshold,
		&rule.DurationSeconds,
		&rule.CooldownSeconds,
		&severity,
		&category,
		&channels,
		&rule.Enabled,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	rule.Operator = models.Operator(operator)
	rule.Severity = models.AlertPriority(severity)
	rule.Category = models.AlertCategory(category)

	if channels != "" {
		if err := json.Unmarshal([]byte(channels), &rule.Channels); err != nil {
			return nil, fmt.Errorf("failed to decode channels of rule %d: %w", rule.ID, err)
		}
	}

	if len(rule.Channels) == 0 {
		rule.Channels = nil
	}

	return &rule, nil
}

func expectOneRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}

	return nil
}

func channelsOrEmpty(ch []models.AlertChannel) []models.AlertChannel {
	if ch == nil {
		return []models.AlertChannel{}
	}

	return ch
}
