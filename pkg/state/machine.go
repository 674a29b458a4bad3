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

package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

// Reasons recorded for timer-driven transitions.
const (
	ReasonInactivityTimeout        = "inactivity_timeout"
	ReasonAlertResolvedAndInactive = "alert_resolved_and_inactive"
	ReasonAlertResolvedButActive   = "alert_resolved_but_active"
)

// Machine is the StateMachine backed by a kv.Store.
type Machine struct {
	store kv.Store
	cfg   models.MonitoringConfig
	now   func() time.Time

	// mu serializes read-modify-write sequences within this process.
	mu sync.Mutex

	hooksMu sync.RWMutex
	hooks   []func(models.Transition)
}

var _ StateMachine = (*Machine)(nil)

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// NewMachine creates a state machine over store.
func NewMachine(store kv.Store, cfg models.MonitoringConfig, opts ...Option) *Machine {
	m := &Machine{
		store: store,
		cfg:   cfg.WithDefaults(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", errCorruptRecord, err)
	}

	return t, nil
}

// getTime reads a timestamp key. Missing keys yield (zero, false, nil).
func (m *Machine) getTime(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := m.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, err
	}

	t, err := parseTime(raw)
	if err != nil {
		log.Printf("Ignoring unreadable timestamp at %s: %v", key, err)
		return time.Time{}, false, nil
	}

	return t, true, nil
}

func (m *Machine) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.store.SetNX(ctx, kv.StateKey, string(models.StateIdle), 0)
	if err != nil {
		return fmt.Errorf("failed to seed monitoring state: %w", err)
	}

	if set {
		if err := m.store.Set(ctx, kv.StateEnteredAtKey, formatTime(m.now()), 0); err != nil {
			return fmt.Errorf("failed to seed state timestamp: %w", err)
		}

		log.Printf("Monitoring state initialized to %s", models.StateIdle)
	}

	return nil
}

func (m *Machine) Current(ctx context.Context) (models.MonitoringState, error) {
	raw, err := m.store.Get(ctx, kv.StateKey)
	if errors.Is(err, kv.ErrNotFound) {
		return models.StateIdle, nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to read monitoring state: %w", err)
	}

	st := models.MonitoringState(raw)
	if !st.Valid() {
		log.Printf("Unknown monitoring state %q in store, treating as %s", raw, models.StateIdle)
		return models.StateIdle, nil
	}

	return st, nil
}

func (m *Machine) intervalFor(st models.MonitoringState) time.Duration {
	switch st {
	case models.StateAlert:
		return m.cfg.AlertInterval
	case models.StateActive:
		return m.cfg.ActiveInterval
	case models.StateIdle:
		return m.cfg.IdleInterval
	default:
		return m.cfg.IdleInterval
	}
}

func (m *Machine) CheckInterval(ctx context.Context) (time.Duration, error) {
	st, err := m.Current(ctx)
	if err != nil {
		return m.cfg.IdleInterval, err
	}

	return m.intervalFor(st), nil
}

func (m *Machine) ShouldCollectFullMetrics(ctx context.Context) (bool, error) {
	st, err := m.Current(ctx)
	if err != nil {
		return false, err
	}

	return st != models.StateIdle, nil
}

func (m *Machine) Wake(ctx context.Context, reason string) (bool, error) {
	rec, err := m.wake(ctx, reason)
	if rec != nil {
		m.notify(*rec)
	}

	return rec != nil, err
}

func (m *Machine) wake(ctx context.Context, reason string) (*models.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, kv.LastActivityKey, formatTime(m.now()), m.cfg.IdleTimeout); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	cur, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	if cur != models.StateIdle {
		return nil, nil
	}

	return m.transition(ctx, cur, models.StateActive, reason)
}

func (m *Machine) EnterAlertState(ctx context.Context, alertRef, reason string) error {
	rec, err := m.enterAlert(ctx, alertRef, reason)
	if rec != nil {
		m.notify(*rec)
	}

	return err
}

func (m *Machine) enterAlert(ctx context.Context, alertRef, reason string) (*models.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, kv.LastAlertKey, alertRef, 0); err != nil {
		return nil, fmt.Errorf("failed to record alert reference: %w", err)
	}

	if err := m.store.Del(ctx, kv.AlertResolvedAtKey); err != nil {
		return nil, fmt.Errorf("failed to clear alert resolution: %w", err)
	}

	cur, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	if cur == models.StateAlert {
		return nil, nil
	}

	return m.transition(ctx, cur, models.StateAlert, reason)
}

func (m *Machine) ResolveAlert(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.Current(ctx)
	if err != nil {
		return err
	}

	if cur != models.StateAlert {
		return ErrNotInAlert
	}

	if err := m.store.Set(ctx, kv.AlertResolvedAtKey, formatTime(m.now()), 0); err != nil {
		return fmt.Errorf("failed to record alert resolution: %w", err)
	}

	log.Printf("Alert resolution recorded, leaving ALERT after %s", m.cfg.AlertResolveDelay)

	return nil
}

func (m *Machine) CheckAndTransition(ctx context.Context) (*models.Transition, error) {
	rec, err := m.checkAndTransition(ctx)
	if rec != nil {
		m.notify(*rec)
	}

	return rec, err
}

func (m *Machine) checkAndTransition(ctx context.Context) (*models.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()

	switch cur {
	case models.StateAlert:
		resolvedAt, ok, err := m.getTime(ctx, kv.AlertResolvedAtKey)
		if err != nil {
			return nil, err
		}

		if !ok || now.Sub(resolvedAt) < m.cfg.AlertResolveDelay {
			return nil, nil
		}

		inactive, err := m.inactive(ctx, now)
		if err != nil {
			return nil, err
		}

		if inactive {
			return m.transition(ctx, cur, models.StateIdle, ReasonAlertResolvedAndInactive)
		}

		return m.transition(ctx, cur, models.StateActive, ReasonAlertResolvedButActive)
	case models.StateActive:
		inactive, err := m.inactive(ctx, now)
		if err != nil {
			return nil, err
		}

		if inactive {
			return m.transition(ctx, cur, models.StateIdle, ReasonInactivityTimeout)
		}
	case models.StateIdle:
	}

	return nil, nil
}

// inactive reports whether no activity was seen for the idle timeout. The
// activity marker expires with the same timeout, so a missing key counts.
func (m *Machine) inactive(ctx context.Context, now time.Time) (bool, error) {
	last, ok, err := m.getTime(ctx, kv.LastActivityKey)
	if err != nil {
		return false, err
	}

	if !ok {
		return true, nil
	}

	return now.Sub(last) >= m.cfg.IdleTimeout, nil
}

func (m *Machine) ForceState(ctx context.Context, st models.MonitoringState, reason string) error {
	if !st.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, st)
	}

	rec, err := m.force(ctx, st, reason)
	if rec != nil {
		m.notify(*rec)
	}

	return err
}

func (m *Machine) force(ctx context.Context, st models.MonitoringState, reason string) (*models.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "forced"
	}

	return m.transition(ctx, cur, st, reason)
}

// transition writes the new state and its audit record. Callers hold m.mu.
func (m *Machine) transition(ctx context.Context, from, to models.MonitoringState, reason string) (*models.Transition, error) {
	now := m.now()

	enteredAt, ok, err := m.getTime(ctx, kv.StateEnteredAtKey)
	if err != nil {
		return nil, err
	}

	if !ok {
		enteredAt = now
	}

	spent := now.Sub(enteredAt)
	if spent < 0 {
		spent = 0
	}

	rec := models.Transition{
		Version:   models.RecordVersion,
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: now.UTC(),
		Duration:  spent,
	}

	if err := m.store.Set(ctx, kv.StateKey, string(to), 0); err != nil {
		return nil, fmt.Errorf("failed to write monitoring state: %w", err)
	}

	if err := m.store.Set(ctx, kv.StateEnteredAtKey, formatTime(now), 0); err != nil {
		return nil, fmt.Errorf("failed to write state timestamp: %w", err)
	}

	log.Printf("Monitoring state %s -> %s (%s) after %s", from, to, reason, spent.Round(time.Second))

	payload, err := json.Marshal(rec)
	if err != nil {
		return &rec, fmt.Errorf("failed to encode transition: %w", err)
	}

	if err := m.store.LPushTrim(ctx, kv.TransitionLogKey, string(payload), m.cfg.TransitionLogLength, 0); err != nil {
		log.Printf("Error appending transition log: %v", err)
	}

	if _, err := m.store.HIncrBy(ctx, kv.TransitionStatsKey, string(to), 1); err != nil {
		log.Printf("Error updating transition counts: %v", err)
	}

	if _, err := m.store.HIncrBy(ctx, kv.TimeInStateKey, string(from), spent.Milliseconds()); err != nil {
		log.Printf("Error updating time in state: %v", err)
	}

	if err := m.store.Publish(ctx, kv.TopicTransitions, payload); err != nil {
		log.Printf("Error publishing transition: %v", err)
	}

	return &rec, nil
}

func (m *Machine) OnTransition(fn func(models.Transition)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()

	m.hooks = append(m.hooks, fn)
}

func (m *Machine) notify(rec models.Transition) {
	m.hooksMu.RLock()
	hooks := append([]func(models.Transition){}, m.hooks...)
	m.hooksMu.RUnlock()

	for _, fn := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Transition hook panicked: %v", r)
				}
			}()

			fn(rec)
		}()
	}
}

func (m *Machine) Snapshot(ctx context.Context) (*models.StateSnapshot, error) {
	cur, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	snap := &models.StateSnapshot{
		State:         cur,
		CheckInterval: m.intervalFor(cur),
		FullMetrics:   cur != models.StateIdle,
	}

	if t, ok, err := m.getTime(ctx, kv.StateEnteredAtKey); err != nil {
		return nil, err
	} else if ok {
		snap.EnteredAt = t
	}

	if t, ok, err := m.getTime(ctx, kv.LastActivityKey); err != nil {
		return nil, err
	} else if ok {
		snap.LastActivity = &t
	}

	if t, ok, err := m.getTime(ctx, kv.AlertResolvedAtKey); err != nil {
		return nil, err
	} else if ok {
		snap.AlertResolvedAt = &t
	}

	ref, err := m.store.Get(ctx, kv.LastAlertKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to read alert reference: %w", err)
	}

	snap.LastAlertRef = ref

	return snap, nil
}

// History returns up to limit transitions, newest first. A limit of zero
// or less returns the whole log.
func (m *Machine) History(ctx context.Context, limit int) ([]models.Transition, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := m.store.LRange(ctx, kv.TransitionLogKey, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to read transition log: %w", err)
	}

	out := make([]models.Transition, 0, len(raw))

	for _, item := range raw {
		var rec models.Transition

		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			log.Printf("Skipping unreadable transition record: %v", err)
			continue
		}

		if rec.Version != models.RecordVersion {
			log.Printf("Skipping transition record with schema version %d", rec.Version)
			continue
		}

		out = append(out, rec)
	}

	return out, nil
}

func (m *Machine) Stats(ctx context.Context) (*models.StateStats, error) {
	cur, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := m.store.HGetAll(ctx, kv.TransitionStatsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read transition counts: %w", err)
	}

	spent, err := m.store.HGetAll(ctx, kv.TimeInStateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read time in state: %w", err)
	}

	stats := &models.StateStats{
		Current:          cur,
		TransitionCounts: make(map[models.MonitoringState]int64),
		TimeInState:      make(map[models.MonitoringState]time.Duration),
	}

	for _, st := range []models.MonitoringState{models.StateIdle, models.StateActive, models.StateAlert} {
		stats.TransitionCounts[st] = parseCount(counts[string(st)])
		stats.TimeInState[st] = time.Duration(parseCount(spent[string(st)])) * time.Millisecond
	}

	if enteredAt, ok, err := m.getTime(ctx, kv.StateEnteredAtKey); err != nil {
		return nil, err
	} else if ok {
		if age := m.now().Sub(enteredAt); age > 0 {
			stats.CurrentAge = age
			stats.TimeInState[cur] += age
		}
	}

	return stats, nil
}

func parseCount(raw string) int64 {
	if raw == "" {
		return 0
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}

	return n
}
