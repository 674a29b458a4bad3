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
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisDialTimeout = 10 * time.Second
	defaultRedisIOTimeout   = 5 * time.Second
	scanBatchSize           = 200
)

// RedisConfig describes how to reach the shared redis instance.
type RedisConfig struct {
	Address  string `json:"address" toml:"address"`
	Password string `json:"password" toml:"password"`
	DB       int    `json:"db" toml:"db"`
	UseTLS   bool   `json:"use_tls" toml:"use_tls"`
	Prefix   string `json:"prefix" toml:"prefix"`
	PoolSize int    `json:"pool_size" toml:"pool_size"`
}

// NewRedisClient builds a client from cfg and verifies it with a PING.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	addr := cfg.Address
	if addr == "" {
		addr = "localhost:6379"
	}

	opts := &redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  defaultRedisDialTimeout,
		ReadTimeout:  defaultRedisIOTimeout,
		WriteTimeout: defaultRedisIOTimeout,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   3,
	}

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, addr, err)
	}

	log.Printf("Connected to redis at %s (db %d)", addr, cfg.DB)

	return client, nil
}

// RedisStore implements Store on top of a redis server so several engine
// processes can share state and the update bus.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. Every key and topic is namespaced with prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) k(key string) string {
	return s.prefix + key
}

func mapRedisErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrNotFound
	case errors.Is(err, redis.ErrClosed):
		return ErrClosed
	case strings.HasPrefix(err.Error(), "WRONGTYPE"):
		return ErrWrongType
	case strings.Contains(err.Error(), "not an integer"):
		return ErrNotInteger
	default:
		return err
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.k(key)).Result()

	return val, mapRedisErr(err)
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return mapRedisErr(s.client.Set(ctx, s.k(key), value, ttl).Err())
}

func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.k(key), value, ttl).Result()

	return ok, mapRedisErr(err)
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.k(key)
	}

	return mapRedisErr(s.client.Del(ctx, full...).Err())
}

// Incr increments key and, when ttl is positive, refreshes its expiry in the
// same transaction.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, s.k(key))

		if ttl > 0 {
			pipe.Expire(ctx, s.k(key), ttl)
		}

		return nil
	})
	if err != nil {
		return 0, mapRedisErr(err)
	}

	return incr.Val(), nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	var (
		ok  bool
		err error
	)

	if ttl <= 0 {
		ok, err = s.client.Persist(ctx, s.k(key)).Result()
	} else {
		ok, err = s.client.Expire(ctx, s.k(key), ttl).Result()
	}

	if err != nil {
		return mapRedisErr(err)
	}

	if !ok {
		// Persist reports false for keys that exist without a TTL.
		exists, err := s.client.Exists(ctx, s.k(key)).Result()
		if err != nil {
			return mapRedisErr(err)
		}

		if exists == 0 {
			return ErrNotFound
		}
	}

	return nil
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.k(key)).Result()
	if err != nil {
		return 0, mapRedisErr(err)
	}

	// go-redis reports -2 for missing keys and -1 for keys without expiry.
	switch ttl {
	case -2, -2 * time.Millisecond:
		return 0, ErrNotFound
	case -1, -1 * time.Millisecond:
		return 0, nil
	}

	return ttl, nil
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	pattern := escapeGlob(s.k(prefix)) + "*"

	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}

	if err := iter.Err(); err != nil {
		return nil, mapRedisErr(err)
	}

	sort.Strings(keys)

	return keys, nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

	return r.Replace(s)
}

func (s *RedisStore) LPushTrim(ctx context.Context, key, value string, maxLen int, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.k(key), value)

		if maxLen > 0 {
			pipe.LTrim(ctx, s.k(key), 0, int64(maxLen-1))
		}

		if ttl > 0 {
			pipe.Expire(ctx, s.k(key), ttl)
		}

		return nil
	})

	return mapRedisErr(err)
}

func (s *RedisStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.LRange(ctx, s.k(key), start, stop).Result()
	if err != nil {
		return nil, mapRedisErr(err)
	}

	return vals, nil
}

func (s *RedisStore) SAdd(ctx context.Context, key, member string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.k(key), member)

		if ttl > 0 {
			pipe.Expire(ctx, s.k(key), ttl)
		}

		return nil
	})

	return mapRedisErr(err)
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.k(key)).Result()
	if err != nil {
		return nil, mapRedisErr(err)
	}

	sort.Strings(members)

	return members, nil
}

func (s *RedisStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.client.HIncrBy(ctx, s.k(key), field, delta).Result()

	return n, mapRedisErr(err)
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	vals, err := s.client.HGetAll(ctx, s.k(key)).Result()
	if err != nil {
		return nil, mapRedisErr(err)
	}

	return vals, nil
}

func (s *RedisStore) Publish(ctx context.Context, topic string, payload []byte) error {
	return mapRedisErr(s.client.Publish(ctx, s.k(topic), payload).Err())
}

// Subscribe waits for the server to confirm the subscription before
// returning, so messages published afterwards are not missed.
func (s *RedisStore) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	ps := s.client.Subscribe(ctx, s.k(topic))

	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()

		return nil, fmt.Errorf("subscribe %s: %w", topic, mapRedisErr(err))
	}

	sub := &redisSubscription{
		ps:   ps,
		ch:   make(chan Message, defaultSubscriptionBuffer),
		done: make(chan struct{}),
	}

	go sub.forward(topic)

	return sub, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisSubscription struct {
	ps   *redis.PubSub
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func (r *redisSubscription) forward(topic string) {
	defer close(r.ch)

	for msg := range r.ps.Channel() {
		select {
		case r.ch <- Message{Topic: topic, Payload: []byte(msg.Payload)}:
		case <-r.done:
			return
		}
	}
}

func (r *redisSubscription) Channel() <-chan Message {
	return r.ch
}

func (r *redisSubscription) Close() error {
	var err error

	r.once.Do(func() {
		close(r.done)
		err = r.ps.Close()
	})

	return err
}
