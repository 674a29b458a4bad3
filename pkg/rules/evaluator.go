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
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/metrics"
	"github.com/carverauto/pulse/pkg/models"
)

// Evaluator implements RuleEvaluator. Violation and cooldown records live in
// the shared store so several engine processes agree on them.
type Evaluator struct {
	store kv.Store
	rules RuleStore
	cfg   models.MonitoringConfig
	now   func() time.Time

	mu       sync.RWMutex
	cache    *ruleSet
	loadedAt time.Time
}

// ruleSet is one load of the enabled rules, indexed by metric. It is never
// mutated after it is built.
type ruleSet struct {
	all      []models.AlertRule
	byMetric map[string][]models.AlertRule
}

var _ RuleEvaluator = (*Evaluator)(nil)

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator creates an Evaluator reading rules from rules.
func NewEvaluator(store kv.Store, rules RuleStore, cfg models.MonitoringConfig, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		store: store,
		rules: rules,
		cfg:   cfg.WithDefaults(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compare reports whether value violates threshold under op. Equality
// operators use tolerance.
func Compare(op models.Operator, value, threshold, tolerance float64) bool {
	switch op {
	case models.OpGreater:
		return value > threshold
	case models.OpGreaterEqual:
		return value >= threshold
	case models.OpLess:
		return value < threshold
	case models.OpLessEqual:
		return value <= threshold
	case models.OpEqual:
		return math.Abs(value-threshold) <= tolerance
	case models.OpNotEqual:
		return math.Abs(value-threshold) > tolerance
	default:
		return false
	}
}

func (e *Evaluator) Rules(ctx context.Context, force bool) ([]models.AlertRule, error) {
	set, err := e.load(ctx, force)
	if err != nil {
		return nil, err
	}

	return set.all, nil
}

// load returns the cached rule set, reloading it when stale, forced or
// invalidated.
func (e *Evaluator) load(ctx context.Context, force bool) (*ruleSet, error) {
	if !force {
		e.mu.RLock()
		cached := e.cache
		fresh := cached != nil && e.now().Sub(e.loadedAt) < e.cfg.RuleCacheTTL
		e.mu.RUnlock()

		if fresh {
			return cached, nil
		}
	}

	enabled, err := e.rules.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	if enabled == nil {
		enabled = []models.AlertRule{}
	}

	set := &ruleSet{all: enabled, byMetric: make(map[string][]models.AlertRule)}
	for _, r := range enabled {
		set.byMetric[r.MetricName] = append(set.byMetric[r.MetricName], r)
	}

	e.mu.Lock()
	e.cache = set
	e.loadedAt = e.now()
	e.mu.Unlock()

	return set, nil
}

// Invalidate drops the cached rules so the next read reloads them.
func (e *Evaluator) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache = nil
}

func (e *Evaluator) rulesFor(ctx context.Context, metric string) ([]models.AlertRule, error) {
	set, err := e.load(ctx, false)
	if err != nil {
		return nil, err
	}

	return set.byMetric[metric], nil
}

// Evaluate applies one sample to every enabled rule on metric. A breach
// creates the violation record if absent and never moves its start time; a
// non-breach deletes it in the same call.
func (e *Evaluator) Evaluate(ctx context.Context, metric string, value float64, ts time.Time) error {
	rules, err := e.rulesFor(ctx, metric)
	if err != nil {
		return err
	}

	var errs []error

	for i := range rules {
		if err := e.evaluateRule(ctx, &rules[i], value, ts); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (e *Evaluator) evaluateRule(ctx context.Context, rule *models.AlertRule, value float64, ts time.Time) error {
	key := kv.ViolationKey(rule.ID)

	if !Compare(rule.Operator, value, rule.Threshold, e.cfg.FloatTolerance) {
		if err := e.store.Del(ctx, key); err != nil {
			return fmt.Errorf("failed to clear violation for rule %d: %w", rule.ID, err)
		}

		return nil
	}

	data, err := json.Marshal(models.RuleViolation{
		RuleID:          rule.ID,
		MetricName:      rule.MetricName,
		CurrentValue:    value,
		FirstExceededAt: ts.UTC(),
		LastSeenAt:      ts.UTC(),
		DurationSeconds: rule.DurationSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to encode violation: %w", err)
	}

	created, err := e.store.SetNX(ctx, key, string(data), e.cfg.ViolationTTL)
	if err != nil {
		return fmt.Errorf("failed to record violation for rule %d: %w", rule.ID, err)
	}

	if created {
		log.Printf("Rule %s violated: %s=%v %s %v", rule.Name, rule.MetricName, value, rule.Operator, rule.Threshold)
		return nil
	}

	// Still breaching: keep the safety TTL ahead of the breach.
	if err := e.store.Expire(ctx, key, e.cfg.ViolationTTL); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("failed to refresh violation for rule %d: %w", rule.ID, err)
	}

	return nil
}

func (e *Evaluator) violation(ctx context.Context, ruleID int64) (*models.RuleViolation, error) {
	raw, err := e.store.Get(ctx, kv.ViolationKey(ruleID))
	if err != nil {
		return nil, err
	}

	var v models.RuleViolation
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("corrupt violation record for rule %d: %w", ruleID, err)
	}

	return &v, nil
}

// ViolationsReadyForAlert returns the violations that have lasted the rule's
// duration, are outside cooldown and still hold on a fresh read of the
// metric. A metric whose current value cannot be read is deferred.
func (e *Evaluator) ViolationsReadyForAlert(ctx context.Context) ([]models.ReadyViolation, error) {
	rules, err := e.Rules(ctx, false)
	if err != nil {
		return nil, err
	}

	now := e.now()

	var ready []models.ReadyViolation

	for i := range rules {
		rule := rules[i]

		v, err := e.violation(ctx, rule.ID)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}

		if err != nil {
			log.Printf("Skipping rule %s: %v", rule.Name, err)
			continue
		}

		elapsed := now.Sub(v.FirstExceededAt)
		if elapsed < rule.Duration() {
			continue
		}

		cooling, err := e.InCooldown(ctx, rule.ID)
		if err != nil {
			log.Printf("Skipping rule %s: %v", rule.Name, err)
			continue
		}

		if cooling {
			continue
		}

		current, err := metrics.ReadCurrentValue(ctx, e.store, rule.MetricName)
		if err != nil {
			log.Printf("Deferring rule %s: %v", rule.Name, err)
			continue
		}

		if !Compare(rule.Operator, current, rule.Threshold, e.cfg.FloatTolerance) {
			continue
		}

		ready = append(ready, models.ReadyViolation{
			Rule:         rule,
			Violation:    *v,
			CurrentValue: current,
			Elapsed:      elapsed,
		})
	}

	return ready, nil
}

// StartCooldown suppresses new alerts from ruleID for seconds. A
// non-positive duration is a no-op.
func (e *Evaluator) StartCooldown(ctx context.Context, ruleID int64, seconds int) error {
	if seconds <= 0 {
		return nil
	}

	until := e.now().Add(time.Duration(seconds) * time.Second).UTC().Format(time.RFC3339Nano)

	if err := e.store.Set(ctx, kv.CooldownKey(ruleID), until, time.Duration(seconds)*time.Second); err != nil {
		return fmt.Errorf("failed to start cooldown for rule %d: %w", ruleID, err)
	}

	return nil
}

func (e *Evaluator) InCooldown(ctx context.Context, ruleID int64) (bool, error) {
	_, err := e.store.Get(ctx, kv.CooldownKey(ruleID))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read cooldown for rule %d: %w", ruleID, err)
	}

	return true, nil
}

// ActiveViolations returns every live violation record, ordered by rule id.
func (e *Evaluator) ActiveViolations(ctx context.Context) ([]models.RuleViolation, error) {
	keys, err := e.store.Keys(ctx, kv.ViolationPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}

	out := make([]models.RuleViolation, 0, len(keys))

	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, kv.ViolationPrefix), 10, 64)
		if err != nil {
			continue
		}

		v, err := e.violation(ctx, id)
		if err != nil {
			continue
		}

		out = append(out, *v)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })

	return out, nil
}

func (e *Evaluator) ClearViolation(ctx context.Context, ruleID int64) error {
	if err := e.store.Del(ctx, kv.ViolationKey(ruleID)); err != nil {
		return fmt.Errorf("failed to clear violation for rule %d: %w", ruleID, err)
	}

	return nil
}

// HandleUpdate adapts Evaluate to the metric subscriber callback.
func (e *Evaluator) HandleUpdate(ctx context.Context, update models.MetricUpdate) error {
	return e.Evaluate(ctx, update.Name, update.Value, update.Timestamp)
}
