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

package kv

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultSubscriptionBuffer = 256

type entryKind int

const (
	kindString entryKind = iota
	kindList
	kindSet
	kindHash
)

type entry struct {
	kind      entryKind
	str       string
	list      []string
	set       map[string]struct{}
	hash      map[string]string
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process Store for single-node deployments and tests.
// Expired keys are removed lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]*entry
	now     func() time.Time
	closed  bool
	subsMu  sync.RWMutex
	subs    map[string]map[*memorySubscription]struct{}
	bufSize int
	dropped int64
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used for TTL expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// WithSubscriptionBuffer sets the per-subscriber channel capacity.
func WithSubscriptionBuffer(size int) MemoryOption {
	return func(s *MemoryStore) {
		if size > 0 {
			s.bufSize = size
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data:    make(map[string]*entry),
		now:     time.Now,
		subs:    make(map[string]map[*memorySubscription]struct{}),
		bufSize: defaultSubscriptionBuffer,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dropped returns how many published messages were dropped because a
// subscriber's buffer was full.
func (s *MemoryStore) Dropped() int64 {
	return atomic.LoadInt64(&s.dropped)
}

// lookup returns the live entry for key. Callers must hold s.mu.
func (s *MemoryStore) lookup(key string) *entry {
	e, ok := s.data[key]
	if !ok {
		return nil
	}

	if e.expired(s.now()) {
		delete(s.data, key)
		return nil
	}

	return e
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return s.now().Add(ttl)
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return "", ErrNotFound
	}

	if e.kind != kindString {
		return "", ErrWrongType
	}

	return e.str, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.data[key] = &entry{kind: kindString, str: value, expiresAt: s.deadline(ttl)}

	return nil
}

func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	if s.lookup(key) != nil {
		return false, nil
	}

	s.data[key] = &entry{kind: kindString, str: value, expiresAt: s.deadline(ttl)}

	return true, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}

	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	e := s.lookup(key)
	if e == nil {
		e = &entry{kind: kindString, str: "0"}
		s.data[key] = e
	}

	if e.kind != kindString {
		return 0, ErrWrongType
	}

	n, err := strconv.ParseInt(e.str, 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}

	n++
	e.str = strconv.FormatInt(n, 10)

	if ttl > 0 {
		e.expiresAt = s.deadline(ttl)
	}

	return n, nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return ErrNotFound
	}

	e.expiresAt = s.deadline(ttl)

	return nil
}

// TTL returns the remaining lifetime of key, or zero for keys without expiry.
func (s *MemoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return 0, ErrNotFound
	}

	if e.expiresAt.IsZero() {
		return 0, nil
	}

	return e.expiresAt.Sub(s.now()), nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0)

	for key := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		if s.lookup(key) != nil {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys, nil
}

func (s *MemoryStore) LPushTrim(_ context.Context, key, value string, maxLen int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	e := s.lookup(key)
	if e == nil {
		e = &entry{kind: kindList}
		s.data[key] = e
	}

	if e.kind != kindList {
		return ErrWrongType
	}

	e.list = append([]string{value}, e.list...)
	if maxLen > 0 && len(e.list) > maxLen {
		e.list = e.list[:maxLen]
	}

	if ttl > 0 {
		e.expiresAt = s.deadline(ttl)
	}

	return nil
}

// LRange follows redis semantics: negative indexes count from the end.
func (s *MemoryStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return []string{}, nil
	}

	if e.kind != kindList {
		return nil, ErrWrongType
	}

	n := int64(len(e.list))
	if start < 0 {
		start += n
	}

	if stop < 0 {
		stop += n
	}

	if start < 0 {
		start = 0
	}

	if stop >= n {
		stop = n - 1
	}

	if start > stop || start >= n {
		return []string{}, nil
	}

	out := make([]string, stop-start+1)
	copy(out, e.list[start:stop+1])

	return out, nil
}

func (s *MemoryStore) SAdd(_ context.Context, key, member string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	e := s.lookup(key)
	if e == nil {
		e = &entry{kind: kindSet, set: make(map[string]struct{})}
		s.data[key] = e
	}

	if e.kind != kindSet {
		return ErrWrongType
	}

	e.set[member] = struct{}{}

	if ttl > 0 {
		e.expiresAt = s.deadline(ttl)
	}

	return nil
}

func (s *MemoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return []string{}, nil
	}

	if e.kind != kindSet {
		return nil, ErrWrongType
	}

	members := make([]string, 0, len(e.set))
	for m := range e.set {
		members = append(members, m)
	}

	sort.Strings(members)

	return members, nil
}

func (s *MemoryStore) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	e := s.lookup(key)
	if e == nil {
		e = &entry{kind: kindHash, hash: make(map[string]string)}
		s.data[key] = e
	}

	if e.kind != kindHash {
		return 0, ErrWrongType
	}

	var current int64

	if raw, ok := e.hash[field]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}

		current = n
	}

	current += delta
	e.hash[field] = strconv.FormatInt(current, 10)

	return current, nil
}

func (s *MemoryStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string)

	e := s.lookup(key)
	if e == nil {
		return out, nil
	}

	if e.kind != kindHash {
		return nil, ErrWrongType
	}

	for k, v := range e.hash {
		out[k] = v
	}

	return out, nil
}

// Publish delivers payload to every current subscriber of topic. A
// subscriber whose buffer is full misses the message.
func (s *MemoryStore) Publish(_ context.Context, topic string, payload []byte) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrClosed
	}

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for sub := range s.subs[topic] {
		msg := Message{Topic: topic, Payload: append([]byte(nil), payload...)}

		select {
		case sub.ch <- msg:
		default:
			atomic.AddInt64(&s.dropped, 1)
			log.Printf("kv: subscriber buffer full on topic %s, dropping message", topic)
		}
	}

	return nil
}

func (s *MemoryStore) Subscribe(_ context.Context, topic string) (Subscription, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	sub := &memorySubscription{
		store: s,
		topic: topic,
		ch:    make(chan Message, s.bufSize),
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if s.subs[topic] == nil {
		s.subs[topic] = make(map[*memorySubscription]struct{})
	}

	s.subs[topic][sub] = struct{}{}

	return sub, nil
}

func (s *MemoryStore) unsubscribe(sub *memorySubscription) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if subs, ok := s.subs[sub.topic]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.ch)
		}
	}
}

// Close closes every subscription. Further writes return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for topic, subs := range s.subs {
		for sub := range subs {
			close(sub.ch)
		}

		delete(s.subs, topic)
	}

	return nil
}

type memorySubscription struct {
	store *MemoryStore
	topic string
	ch    chan Message
	once  sync.Once
}

func (m *memorySubscription) Channel() <-chan Message {
	return m.ch
}

func (m *memorySubscription) Close() error {
	m.once.Do(func() {
		m.store.unsubscribe(m)
	})

	return nil
}
