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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

// SubscriberStats is a point-in-time view of the listen loop counters.
type SubscriberStats struct {
	Running       bool       `json:"running"`
	Received      int64      `json:"received"`
	Processed     int64      `json:"processed"`
	Errors        int64      `json:"errors"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Subscriber listens on the metric bus and fans updates out to callbacks.
type Subscriber struct {
	store        kv.Store
	topic        string
	now          func() time.Time
	staleAfter   time.Duration
	maxErrorRate float64

	filter map[string]struct{}

	cbMu      sync.RWMutex
	callbacks []Callback

	received    int64
	processed   int64
	failures    int64
	lastMessage int64 // unix nanos
	running     atomic.Bool

	lifecycleMu sync.Mutex
	sub         kv.Subscription
	done        chan struct{}
	cancel      context.CancelFunc
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithMetricFilter restricts delivery to the named metrics.
func WithMetricFilter(names ...string) SubscriberOption {
	return func(s *Subscriber) {
		if len(names) == 0 {
			return
		}

		s.filter = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.filter[n] = struct{}{}
		}
	}
}

// WithSubscriberClock overrides the wall clock used for health checks.
func WithSubscriberClock(now func() time.Time) SubscriberOption {
	return func(s *Subscriber) {
		s.now = now
	}
}

// NewSubscriber creates a Subscriber for the metric update topic.
func NewSubscriber(store kv.Store, cfg models.MonitoringConfig, opts ...SubscriberOption) *Subscriber {
	cfg = cfg.WithDefaults()

	s := &Subscriber{
		store:        store,
		topic:        kv.TopicMetricUpdates,
		now:          time.Now,
		staleAfter:   cfg.SubscriberStaleAfter,
		maxErrorRate: cfg.SubscriberMaxErrorRate,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddCallback registers cb for every delivered update.
func (s *Subscriber) AddCallback(cb Callback) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.callbacks = append(s.callbacks, cb)
}

// Start subscribes once and runs the listen loop until Stop or ctx ends.
func (s *Subscriber) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}

	sub, err := s.store.Subscribe(ctx, s.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.topic, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	s.sub = sub
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.listen(loopCtx, sub, s.done)

	log.Printf("Metric subscriber listening on %s", s.topic)

	return nil
}

func (s *Subscriber) listen(ctx context.Context, sub kv.Subscription, done chan struct{}) {
	defer close(done)
	defer s.running.Store(false)

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload []byte) {
	atomic.AddInt64(&s.received, 1)
	atomic.StoreInt64(&s.lastMessage, s.now().UnixNano())

	update, err := DecodeUpdate(payload, s.now())
	if err != nil {
		atomic.AddInt64(&s.failures, 1)
		log.Printf("Skipping metric update: %v", err)

		return
	}

	if s.filter != nil {
		if _, ok := s.filter[update.Name]; !ok {
			return
		}
	}

	s.cbMu.RLock()
	callbacks := append([]Callback(nil), s.callbacks...)
	s.cbMu.RUnlock()

	failed := false

	for _, cb := range callbacks {
		if err := invoke(ctx, cb, update); err != nil {
			failed = true

			log.Printf("Metric callback failed for %s: %v", update.Name, err)
		}
	}

	if failed {
		atomic.AddInt64(&s.failures, 1)
		return
	}

	atomic.AddInt64(&s.processed, 1)
}

func invoke(ctx context.Context, cb Callback, update models.MetricUpdate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()

	return cb(ctx, update)
}

// Stop unsubscribes and waits for the listen loop to exit.
func (s *Subscriber) Stop() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.sub == nil {
		return nil
	}

	err := s.sub.Close()
	s.cancel()
	<-s.done

	s.sub = nil

	log.Printf("Metric subscriber stopped")

	return err
}

// Healthy reports running, a message within the stale window and an error
// rate below the configured maximum.
func (s *Subscriber) Healthy() bool {
	if !s.running.Load() {
		return false
	}

	last := atomic.LoadInt64(&s.lastMessage)
	if last == 0 || s.now().Sub(time.Unix(0, last)) > s.staleAfter {
		return false
	}

	received := atomic.LoadInt64(&s.received)
	if received == 0 {
		return false
	}

	rate := float64(atomic.LoadInt64(&s.failures)) / float64(received)

	return rate < s.maxErrorRate
}

func (s *Subscriber) Stats() SubscriberStats {
	st := SubscriberStats{
		Running:   s.running.Load(),
		Received:  atomic.LoadInt64(&s.received),
		Processed: atomic.LoadInt64(&s.processed),
		Errors:    atomic.LoadInt64(&s.failures),
	}

	if last := atomic.LoadInt64(&s.lastMessage); last != 0 {
		t := time.Unix(0, last)
		st.LastMessageAt = &t
	}

	return st
}

// DecodeUpdate parses a bus payload. value may be a number or a numeric
// string; timestamp may be RFC3339, unix seconds (fractions kept) or a
// numeric string, and defaults to now when absent.
func DecodeUpdate(payload []byte, now time.Time) (models.MetricUpdate, error) {
	var update models.MetricUpdate

	if !gjson.ValidBytes(payload) {
		return update, fmt.Errorf("%w: malformed JSON", ErrInvalidUpdate)
	}

	doc := gjson.ParseBytes(payload)

	name := doc.Get("name")
	if name.Type != gjson.String || name.Str == "" {
		return update, fmt.Errorf("%w: missing name", ErrInvalidUpdate)
	}

	value, err := decodeNumber(doc.Get("value"))
	if err != nil {
		return update, fmt.Errorf("%w: value of %s: %w", ErrInvalidUpdate, name.Str, err)
	}

	ts, err := decodeTimestamp(doc.Get("timestamp"), now)
	if err != nil {
		return update, fmt.Errorf("%w: timestamp of %s: %w", ErrInvalidUpdate, name.Str, err)
	}

	update.Name = name.Str
	update.Value = value
	update.Timestamp = ts

	return update, nil
}

func decodeNumber(r gjson.Result) (float64, error) {
	if !r.Exists() {
		return 0, errors.New("missing")
	}

	var (
		v   float64
		err error
	)

	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		v, err = strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return 0, err
		}
	case gjson.Null, gjson.False, gjson.True, gjson.JSON:
		return 0, fmt.Errorf("unexpected %s", r.Type)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}

	return v, nil
}

func decodeTimestamp(r gjson.Result, now time.Time) (time.Time, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return now.UTC(), nil
	}

	if r.Type == gjson.String {
		if t, err := time.Parse(time.RFC3339Nano, r.Str); err == nil {
			return t.UTC(), nil
		}
	}

	v, err := decodeNumber(r)
	if err != nil {
		return time.Time{}, err
	}

	sec, frac := math.Modf(v)

	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
}
