package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

type updateSink struct {
	mu      sync.Mutex
	updates []models.MetricUpdate
	ch      chan struct{}
}

func newUpdateSink() *updateSink {
	return &updateSink{ch: make(chan struct{}, 64)}
}

func (s *updateSink) callback(_ context.Context, u models.MetricUpdate) error {
	s.mu.Lock()
	s.updates = append(s.updates, u)
	s.mu.Unlock()

	s.ch <- struct{}{}

	return nil
}

func (s *updateSink) wait(t *testing.T, n int) []models.MetricUpdate {
	t.Helper()

	for i := 0; i < n; i++ {
		select {
		case <-s.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for update %d", i+1)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.MetricUpdate(nil), s.updates...)
}

func TestSubscriber_DeliversUpdates(t *testing.T) {
	c, store, clock := newTestCollector(t)
	ctx := context.Background()

	sub := NewSubscriber(store, models.DefaultMonitoringConfig(), WithSubscriberClock(clock.Now))
	sink := newUpdateSink()
	sub.AddCallback(sink.callback)

	require.NoError(t, sub.Start(ctx))
	t.Cleanup(func() { _ = sub.Stop() })

	require.ErrorIs(t, sub.Start(ctx), ErrAlreadyRunning)
	assert.False(t, sub.Healthy(), "no message yet")

	require.NoError(t, c.PushMetric(ctx, "error_rate", 0.02))

	got := sink.wait(t, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "error_rate", got[0].Name)
	assert.InDelta(t, 0.02, got[0].Value, 0)

	assert.True(t, sub.Healthy())

	stats := sub.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, int64(1), stats.Received)
	assert.Equal(t, int64(1), stats.Processed)
	require.NotNil(t, stats.LastMessageAt)

	clock.Advance(301 * time.Second)
	assert.False(t, sub.Healthy(), "stale after 300s of silence")
}

func TestSubscriber_FilterAndBadPayloads(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := kv.NewMemoryStore(kv.WithClock(clock.Now))
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	sub := NewSubscriber(store, models.DefaultMonitoringConfig(),
		WithSubscriberClock(clock.Now), WithMetricFilter("cpu"))
	sink := newUpdateSink()
	sub.AddCallback(sink.callback)

	require.NoError(t, sub.Start(ctx))
	t.Cleanup(func() { _ = sub.Stop() })

	for _, payload := range []string{
		`{"name":"mem","value":1}`,
		`not json`,
		`{"name":"cpu","value":"91.5","timestamp":"2025-03-01T09:00:00Z"}`,
	} {
		require.NoError(t, store.Publish(ctx, kv.TopicMetricUpdates, []byte(payload)))
	}

	got := sink.wait(t, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "cpu", got[0].Name)
	assert.InDelta(t, 91.5, got[0].Value, 0)
	assert.True(t, clock.Now().Equal(got[0].Timestamp))

	require.Eventually(t, func() bool { return sub.Stats().Received == 3 }, time.Second, 10*time.Millisecond)

	stats := sub.Stats()
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(1), stats.Processed)
	assert.False(t, sub.Healthy(), "one failure in three exceeds the error rate")
}

func TestSubscriber_CallbackFailuresAreContained(t *testing.T) {
	c, store, clock := newTestCollector(t)
	ctx := context.Background()

	sub := NewSubscriber(store, models.DefaultMonitoringConfig(), WithSubscriberClock(clock.Now))
	sink := newUpdateSink()

	sub.AddCallback(func(context.Context, models.MetricUpdate) error {
		panic("callback bug")
	})
	sub.AddCallback(func(context.Context, models.MetricUpdate) error {
		return errors.New("downstream unavailable")
	})
	sub.AddCallback(sink.callback)

	require.NoError(t, sub.Start(ctx))
	t.Cleanup(func() { _ = sub.Stop() })

	require.NoError(t, c.PushMetric(ctx, "cpu", 1))
	sink.wait(t, 1)

	require.Eventually(t, func() bool { return sub.Stats().Errors == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), sub.Stats().Processed)
}

func TestSubscriber_StopWaitsForLoop(t *testing.T) {
	_, store, _ := newTestCollector(t)

	sub := NewSubscriber(store, models.DefaultMonitoringConfig())
	require.NoError(t, sub.Start(context.Background()))
	require.NoError(t, sub.Stop())

	assert.False(t, sub.Stats().Running)
	assert.False(t, sub.Healthy())
	require.NoError(t, sub.Stop(), "second stop is a no-op")

	require.NoError(t, sub.Start(context.Background()), "restart after stop")
	require.NoError(t, sub.Stop())
}

func TestDecodeUpdate(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		payload string
		want    models.MetricUpdate
		wantErr bool
	}{
		{
			name:    "numeric",
			payload: `{"name":"cpu","value":12.5,"timestamp":1740819600}`,
			want:    models.MetricUpdate{Name: "cpu", Value: 12.5, Timestamp: time.Unix(1740819600, 0).UTC()},
		},
		{
			name:    "fractional unix seconds",
			payload: `{"name":"cpu","value":1,"timestamp":1740819600.25}`,
			want:    models.MetricUpdate{Name: "cpu", Value: 1, Timestamp: time.Unix(1740819600, 250_000_000).UTC()},
		},
		{
			name:    "RFC3339 with nanoseconds",
			payload: `{"name":"cpu","value":1,"timestamp":"2025-03-01T08:59:59.9Z"}`,
			want:    models.MetricUpdate{Name: "cpu", Value: 1, Timestamp: now.Add(-100 * time.Millisecond)},
		},
		{
			name:    "string value and timestamp",
			payload: `{"name":"cpu","value":"3","timestamp":"1740819600"}`,
			want:    models.MetricUpdate{Name: "cpu", Value: 3, Timestamp: time.Unix(1740819600, 0).UTC()},
		},
		{
			name:    "RFC3339 timestamp",
			payload: `{"name":"cpu","value":1,"timestamp":"2025-03-01T08:00:00Z"}`,
			want:    models.MetricUpdate{Name: "cpu", Value: 1, Timestamp: now.Add(-time.Hour)},
		},
		{
			name:    "missing timestamp defaults to now",
			payload: `{"name":"cpu","value":1}`,
			want:    models.MetricUpdate{Name: "cpu", Value: 1, Timestamp: now},
		},
		{name: "missing name", payload: `{"value":1}`, wantErr: true},
		{name: "missing value", payload: `{"name":"cpu"}`, wantErr: true},
		{name: "non numeric value", payload: `{"name":"cpu","value":"high"}`, wantErr: true},
		{name: "object value", payload: `{"name":"cpu","value":{"v":1}}`, wantErr: true},
		{name: "malformed", payload: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUpdate([]byte(tt.payload), now)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidUpdate)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
