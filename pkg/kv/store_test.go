package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// storeHarness lets the same behavioural tests run against every backend.
type storeHarness struct {
	store   Store
	advance func(time.Duration)
}

func newMemoryHarness(t *testing.T) storeHarness {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(WithClock(clock.Now))

	t.Cleanup(func() { _ = s.Close() })

	return storeHarness{store: s, advance: clock.Advance}
}

func newRedisHarness(t *testing.T) storeHarness {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, "test:")

	t.Cleanup(func() { _ = s.Close() })

	return storeHarness{store: s, advance: mr.FastForward}
}

func forEachStore(t *testing.T, fn func(t *testing.T, h storeHarness)) {
	t.Helper()

	backends := []struct {
		name string
		make func(t *testing.T) storeHarness
	}{
		{name: "memory", make: newMemoryHarness},
		{name: "redis", make: newRedisHarness},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.make(t))
		})
	}
}

func TestStore_GetSetExpiry(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		_, err := h.store.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, h.store.Set(ctx, "a", "1", 300*time.Second))
		require.NoError(t, h.store.Set(ctx, "b", "2", 0))

		v, err := h.store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", v)

		ttl, err := h.store.TTL(ctx, "a")
		require.NoError(t, err)
		assert.InDelta(t, float64(300*time.Second), float64(ttl), float64(time.Second))

		ttl, err = h.store.TTL(ctx, "b")
		require.NoError(t, err)
		assert.Zero(t, ttl)

		h.advance(301 * time.Second)

		_, err = h.store.Get(ctx, "a")
		require.ErrorIs(t, err, ErrNotFound)

		v, err = h.store.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "2", v)
	})
}

func TestStore_SetNX(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		ok, err := h.store.SetNX(ctx, "lock", "first", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = h.store.SetNX(ctx, "lock", "second", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		v, err := h.store.Get(ctx, "lock")
		require.NoError(t, err)
		assert.Equal(t, "first", v)

		h.advance(2 * time.Minute)

		ok, err = h.store.SetNX(ctx, "lock", "third", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestStore_IncrAndDel(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		for i := int64(1); i <= 3; i++ {
			n, err := h.store.Incr(ctx, "counter", 2*time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}

		require.NoError(t, h.store.Set(ctx, "word", "abc", 0))

		_, err := h.store.Incr(ctx, "word", 0)
		require.ErrorIs(t, err, ErrNotInteger)

		require.NoError(t, h.store.Del(ctx, "counter", "word", "never-existed"))

		_, err = h.store.Get(ctx, "counter")
		require.ErrorIs(t, err, ErrNotFound)

		h.advance(3 * time.Minute)

		n, err := h.store.Incr(ctx, "counter", 2*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestStore_Expire(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		require.ErrorIs(t, h.store.Expire(ctx, "missing", time.Second), ErrNotFound)

		require.NoError(t, h.store.Set(ctx, "k", "v", 0))
		require.NoError(t, h.store.Expire(ctx, "k", 10*time.Second))

		h.advance(11 * time.Second)

		_, err := h.store.Get(ctx, "k")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_LPushTrimAndRange(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		for _, v := range []string{"a", "b", "c", "d", "e"} {
			require.NoError(t, h.store.LPushTrim(ctx, "list", v, 3, time.Hour))
		}

		all, err := h.store.LRange(ctx, "list", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"e", "d", "c"}, all)

		head, err := h.store.LRange(ctx, "list", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"e"}, head)

		empty, err := h.store.LRange(ctx, "nothing", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, empty)

		require.NoError(t, h.store.Set(ctx, "scalar", "x", 0))
		require.ErrorIs(t, h.store.LPushTrim(ctx, "scalar", "y", 3, 0), ErrWrongType)
	})
}

func TestStore_SetsAndHashes(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		require.NoError(t, h.store.SAdd(ctx, "hours", "9", time.Hour))
		require.NoError(t, h.store.SAdd(ctx, "hours", "14", time.Hour))
		require.NoError(t, h.store.SAdd(ctx, "hours", "9", time.Hour))

		members, err := h.store.SMembers(ctx, "hours")
		require.NoError(t, err)
		assert.Equal(t, []string{"14", "9"}, members)

		n, err := h.store.HIncrBy(ctx, "counts", "IDLE", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = h.store.HIncrBy(ctx, "counts", "IDLE", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		_, err = h.store.HIncrBy(ctx, "counts", "ALERT", 1)
		require.NoError(t, err)

		all, err := h.store.HGetAll(ctx, "counts")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"IDLE": "5", "ALERT": "1"}, all)

		missing, err := h.store.HGetAll(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, missing)
	})
}

func TestStore_KeysByPrefix(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		require.NoError(t, h.store.Set(ctx, ViolationKey(2), "{}", time.Hour))
		require.NoError(t, h.store.Set(ctx, ViolationKey(1), "{}", time.Minute))
		require.NoError(t, h.store.Set(ctx, CooldownKey(1), "1", time.Hour))

		keys, err := h.store.Keys(ctx, ViolationPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{ViolationKey(1), ViolationKey(2)}, keys)

		h.advance(2 * time.Minute)

		keys, err = h.store.Keys(ctx, ViolationPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{ViolationKey(2)}, keys)
	})
}

func TestStore_PublishSubscribe(t *testing.T) {
	forEachStore(t, func(t *testing.T, h storeHarness) {
		ctx := context.Background()

		sub, err := h.store.Subscribe(ctx, TopicMetricUpdates)
		require.NoError(t, err)

		other, err := h.store.Subscribe(ctx, TopicTransitions)
		require.NoError(t, err)

		defer func() { _ = other.Close() }()

		require.NoError(t, h.store.Publish(ctx, TopicMetricUpdates, []byte(`{"name":"cpu_percent","value":85}`)))

		select {
		case msg := <-sub.Channel():
			assert.Equal(t, TopicMetricUpdates, msg.Topic)
			assert.JSONEq(t, `{"name":"cpu_percent","value":85}`, string(msg.Payload))
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}

		select {
		case msg := <-other.Channel():
			t.Fatalf("unexpected message on other topic: %s", msg.Payload)
		case <-time.After(50 * time.Millisecond):
		}

		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		// Channel is closed after the subscription ends.
		require.Eventually(t, func() bool {
			select {
			case _, ok := <-sub.Channel():
				return !ok
			default:
				return false
			}
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestMemoryStore_DropsWhenSubscriberIsFull(t *testing.T) {
	s := NewMemoryStore(WithSubscriptionBuffer(1))
	defer func() { _ = s.Close() }()

	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "t")
	require.NoError(t, err)

	require.NoError(t, s.Publish(ctx, "t", []byte("1")))
	require.NoError(t, s.Publish(ctx, "t", []byte("2")))

	assert.Equal(t, int64(1), s.Dropped())

	msg := <-sub.Channel()
	assert.Equal(t, "1", string(msg.Payload))
}

func TestMemoryStore_ClosedRejectsWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "t")
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, ok := <-sub.Channel()
	assert.False(t, ok)

	require.ErrorIs(t, s.Set(ctx, "k", "v", 0), ErrClosed)
	require.ErrorIs(t, s.Publish(ctx, "t", nil), ErrClosed)

	_, err = s.Subscribe(ctx, "t")
	require.ErrorIs(t, err, ErrClosed)

	// Closing a subscription after the store is gone must not panic.
	require.NoError(t, sub.Close())
}
