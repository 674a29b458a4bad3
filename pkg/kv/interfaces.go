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

// Package kv provides the shared TTL-capable key-value store and the
// publish/subscribe bus used by every monitoring component.
package kv

//go:generate mockgen -destination=mock_kv.go -package=kv github.com/carverauto/pulse/pkg/kv Store,Subscription

import (
	"context"
	"time"
)

// Message is a single payload received from a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Subscription is a live subscription to a topic.
type Subscription interface {
	// Channel delivers messages until Close is called.
	Channel() <-chan Message

	// Close unsubscribes and closes the channel.
	Close() error
}

// Store is the shared state and messaging backend. Every method mutates at
// most a single key and is atomic with respect to that key. A ttl of zero
// means the key does not expire.
type Store interface {
	// String operations.

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Keys(ctx context.Context, prefix string) ([]string, error)

	// List operations. LPushTrim prepends value and keeps at most maxLen entries.

	LPushTrim(ctx context.Context, key, value string, maxLen int, ttl time.Duration) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// Set operations.

	SAdd(ctx context.Context, key, member string, ttl time.Duration) error
	SMembers(ctx context.Context, key string) ([]string, error)

	// Hash operations.

	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Bus operations.

	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	Close() error
}
