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

package activity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

const (
	// rateCounterTTL keeps the current and the previous minute readable.
	rateCounterTTL = 2 * time.Minute
)

// Classifier is the tiered RequestClassifier backed by a kv.Store.
type Classifier struct {
	store kv.Store
	cfg   models.MonitoringConfig
	now   func() time.Time
}

var _ RequestClassifier = (*Classifier)(nil)

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

// NewClassifier creates a classifier over store.
func NewClassifier(store kv.Store, cfg models.MonitoringConfig, opts ...Option) *Classifier {
	c := &Classifier{
		store: store,
		cfg:   cfg.WithDefaults(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Classifier) Classify(ctx context.Context, method, path string) (bool, string) {
	method = strings.ToUpper(strings.TrimSpace(method))
	path = cleanPath(path)

	if wake, reason, ok := classifyStatic(method, path); ok {
		if wake {
			c.recordWake(ctx, method, path, reason)
		}

		return wake, reason
	}

	wake, reason := c.classifySmart(ctx, method, path)
	if wake {
		c.recordWake(ctx, method, path, reason)
	}

	return wake, reason
}

// classifyStatic applies the fixed prefix tiers. ok is false when the
// request falls through to the learned heuristics.
func classifyStatic(method, path string) (wake bool, reason string, ok bool) {
	if hasAnyPrefix(path, ignorePrefixes) {
		return false, ReasonRoutineMonitoring, true
	}

	if hasAnyPrefix(path, wakePrefixes) {
		return true, ReasonCriticalUserAction, true
	}

	for _, ap := range actionPaths {
		if !strings.HasPrefix(path, ap.prefix) {
			continue
		}

		switch {
		case isReadMethod(method):
			return false, "viewing_" + ap.viewing, true
		case isWriteMethod(method):
			return true, ap.action + "_action", true
		}
	}

	return false, "", false
}

func (c *Classifier) classifySmart(ctx context.Context, method, path string) (bool, string) {
	now := c.now()
	key := patternKey(path)

	prevRequest, seen, rate, err := c.track(ctx, key, now)
	if err != nil {
		log.Printf("Activity tracking failed for %s: %v", key, err)
	}

	if isWriteMethod(method) {
		return true, ReasonWriteOperation
	}

	if err != nil {
		return false, ReasonRoutineRead
	}

	if !seen || now.Sub(prevRequest) >= c.cfg.FirstRequestWindow {
		return true, ReasonFirstRequest
	}

	hours, err := c.learnedHours(ctx, key, now)
	if err != nil {
		log.Printf("Reading hour pattern for %s failed: %v", key, err)
		return false, ReasonRoutineRead
	}

	hour := now.Hour()
	if len(hours) > 0 && !containsString(hours, strconv.Itoa(hour)) {
		return true, fmt.Sprintf("%s%d", unusualTimePrefix, hour)
	}

	baseline, ok, err := c.baseline(ctx, key)
	if err != nil {
		log.Printf("Reading rate baseline for %s failed: %v", key, err)
		return false, ReasonRoutineRead
	}

	if ok && baseline > 0 && float64(rate) > c.cfg.FrequencyFactor*baseline {
		return true, fmt.Sprintf("%s%d", highFrequencyPrefix, rate)
	}

	lower := strings.ToLower(path)
	for _, marker := range adminMarkers {
		if strings.Contains(lower, marker) {
			return true, ReasonAdminAccess
		}
	}

	return false, ReasonRoutineRead
}

// track refreshes the global last-request marker and bumps the per-minute
// counter for key. It returns the previous last-request time, whether one
// existed, and the current minute's count.
func (c *Classifier) track(ctx context.Context, key string, now time.Time) (time.Time, bool, int64, error) {
	var (
		prev time.Time
		seen bool
	)

	raw, err := c.store.Get(ctx, kv.LastRequestKey)

	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return prev, false, 0, err
	default:
		ms, perr := strconv.ParseInt(raw, 10, 64)
		if perr == nil {
			prev = time.UnixMilli(ms)
			seen = true
		}
	}

	if err := c.store.Set(ctx, kv.LastRequestKey, strconv.FormatInt(now.UnixMilli(), 10), 0); err != nil {
		return prev, seen, 0, err
	}

	minute := now.Unix() / 60

	rate, err := c.store.Incr(ctx, kv.PathRateKey(key, minute), rateCounterTTL)
	if err != nil {
		return prev, seen, 0, err
	}

	if rate == 1 {
		c.rollMinute(ctx, key, minute)
	}

	return prev, seen, rate, nil
}

// rollMinute runs on the first request of a minute. It stores the previous
// minute's count as a baseline sample and indexes the path.
func (c *Classifier) rollMinute(ctx context.Context, key string, minute int64) {
	if err := c.store.SAdd(ctx, kv.PathIndexKey, key, c.cfg.PatternWindow); err != nil {
		log.Printf("Indexing path %s failed: %v", key, err)
	}

	raw, err := c.store.Get(ctx, kv.PathRateKey(key, minute-1))
	if errors.Is(err, kv.ErrNotFound) {
		return
	}

	if err != nil {
		log.Printf("Reading previous rate for %s failed: %v", key, err)
		return
	}

	maxSamples := int(c.cfg.PatternWindow / time.Minute)

	if err := c.store.LPushTrim(ctx, kv.PathRateSamplesKey(key), raw, maxSamples, c.cfg.PatternWindow); err != nil {
		log.Printf("Storing rate sample for %s failed: %v", key, err)
	}
}

func (c *Classifier) baseline(ctx context.Context, key string) (float64, bool, error) {
	raw, err := c.store.Get(ctx, kv.PathBaselineKey(key))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, nil
	}

	return v, true, nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

func isReadMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

// cleanPath drops the query string and guarantees a leading slash.
func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

// patternKey folds identifier segments so /api/items/17 and /api/items/18
// share one learned pattern.
func patternKey(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if isIdentifier(seg) {
			segments[i] = ":id"
		}
	}

	return strings.Join(segments, "/")
}

func isIdentifier(seg string) bool {
	if seg == "" {
		return false
	}

	if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
		return true
	}

	if len(seg) < 16 {
		return false
	}

	for _, r := range seg {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !isHex && r != '-' {
			return false
		}
	}

	return true
}
