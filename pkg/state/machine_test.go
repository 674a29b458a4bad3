package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestMachine(t *testing.T) (*Machine, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := kv.NewMemoryStore(kv.WithClock(clock.Now))

	t.Cleanup(func() { _ = store.Close() })

	m := NewMachine(store, models.DefaultMonitoringConfig(), WithClock(clock.Now))
	require.NoError(t, m.Init(context.Background()))

	return m, clock
}

func TestMachine_InitialState(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	st, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, st)

	interval, err := m.CheckInterval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, interval)

	full, err := m.ShouldCollectFullMetrics(ctx)
	require.NoError(t, err)
	assert.False(t, full)
}

// Scenario: wake from IDLE, then fall back after the idle timeout.
func TestMachine_WakeThenInactivityTimeout(t *testing.T) {
	m, clock := newTestMachine(t)
	ctx := context.Background()

	changed, err := m.Wake(ctx, "critical_user_action")
	require.NoError(t, err)
	assert.True(t, changed)

	st, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, st)

	interval, err := m.CheckInterval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, interval)

	clock.Advance(899 * time.Second)

	rec, err := m.CheckAndTransition(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	clock.Advance(time.Second)

	rec, err = m.CheckAndTransition(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StateActive, rec.From)
	assert.Equal(t, models.StateIdle, rec.To)
	assert.Equal(t, ReasonInactivityTimeout, rec.Reason)
	assert.Equal(t, 900*time.Second, rec.Duration)

	st, err = m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, st)
}

func TestMachine_WakeWhileActiveOnlyRefreshesActivity(t *testing.T) {
	m, clock := newTestMachine(t)
	ctx := context.Background()

	_, err := m.Wake(ctx, "write_operation")
	require.NoError(t, err)

	clock.Advance(600 * time.Second)

	changed, err := m.Wake(ctx, "write_operation")
	require.NoError(t, err)
	assert.False(t, changed)

	// 900s after the first wake but only 300s after the second.
	clock.Advance(300 * time.Second)

	rec, err := m.CheckAndTransition(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMachine_AlertLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		keepActive bool
		wantState  models.MonitoringState
		wantReason string
	}{
		{
			name:       "resolved and inactive goes idle",
			wantState:  models.StateIdle,
			wantReason: ReasonAlertResolvedAndInactive,
		},
		{
			name:       "resolved but active goes active",
			keepActive: true,
			wantState:  models.StateActive,
			wantReason: ReasonAlertResolvedButActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, clock := newTestMachine(t)
			ctx := context.Background()

			require.NoError(t, m.EnterAlertState(ctx, "alert:42", "cpu_percent high"))

			st, err := m.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.StateAlert, st)

			interval, err := m.CheckInterval(ctx)
			require.NoError(t, err)
			assert.Equal(t, 15*time.Second, interval)

			// Without a resolution ALERT persists regardless of inactivity.
			clock.Advance(2 * time.Hour)

			rec, err := m.CheckAndTransition(ctx)
			require.NoError(t, err)
			assert.Nil(t, rec)

			require.NoError(t, m.ResolveAlert(ctx))

			st, err = m.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.StateAlert, st, "resolution must not transition immediately")

			clock.Advance(600 * time.Second)

			if tt.keepActive {
				_, err = m.Wake(ctx, "write_operation")
				require.NoError(t, err)
			}

			rec, err = m.CheckAndTransition(ctx)
			require.NoError(t, err)
			assert.Nil(t, rec, "resolution delay has not elapsed")

			clock.Advance(300 * time.Second)

			rec, err = m.CheckAndTransition(ctx)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, tt.wantState, rec.To)
			assert.Equal(t, tt.wantReason, rec.Reason)

			snap, err := m.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, "alert:42", snap.LastAlertRef)
		})
	}
}

func TestMachine_ResolveOutsideAlert(t *testing.T) {
	m, _ := newTestMachine(t)

	err := m.ResolveAlert(context.Background())
	require.ErrorIs(t, err, ErrNotInAlert)
}

func TestMachine_ReenteringAlertClearsResolution(t *testing.T) {
	m, clock := newTestMachine(t)
	ctx := context.Background()

	require.NoError(t, m.EnterAlertState(ctx, "alert:1", "first"))
	require.NoError(t, m.ResolveAlert(ctx))

	clock.Advance(800 * time.Second)
	require.NoError(t, m.EnterAlertState(ctx, "alert:2", "second"))

	clock.Advance(200 * time.Second)

	rec, err := m.CheckAndTransition(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.AlertResolvedAt)
	assert.Equal(t, "alert:2", snap.LastAlertRef)
}

func TestMachine_ForceState(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	require.NoError(t, m.ForceState(ctx, models.StateAlert, "drill"))

	st, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateAlert, st)

	err = m.ForceState(ctx, models.MonitoringState("PANIC"), "")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMachine_HistoryStatsAndHooks(t *testing.T) {
	m, clock := newTestMachine(t)
	ctx := context.Background()

	var seen []models.Transition

	m.OnTransition(func(tr models.Transition) { seen = append(seen, tr) })
	m.OnTransition(func(models.Transition) { panic("hook failure must not escape") })

	_, err := m.Wake(ctx, "critical_user_action")
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	require.NoError(t, m.EnterAlertState(ctx, "alert:7", "db down"))

	clock.Advance(10 * time.Second)

	history, err := m.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StateAlert, history[0].To)
	assert.Equal(t, models.StateActive, history[1].To)
	assert.Equal(t, models.RecordVersion, history[0].Version)
	assert.NotEmpty(t, history[0].ID)

	limited, err := m.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.Len(t, seen, 2)
	assert.Equal(t, "db down", seen[1].Reason)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateAlert, stats.Current)
	assert.Equal(t, int64(1), stats.TransitionCounts[models.StateActive])
	assert.Equal(t, int64(1), stats.TransitionCounts[models.StateAlert])
	assert.Equal(t, 30*time.Second, stats.TimeInState[models.StateActive])
	assert.Equal(t, 10*time.Second, stats.CurrentAge)
	assert.Equal(t, 10*time.Second, stats.TimeInState[models.StateAlert])
}

func TestMachine_HistorySkipsUnknownRecords(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := kv.NewMemoryStore(kv.WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, store.LPushTrim(ctx, kv.TransitionLogKey, "{'from': 'IDLE'}", 10, 0))
	require.NoError(t, store.LPushTrim(ctx, kv.TransitionLogKey, `{"v":99,"from":"IDLE","to":"ACTIVE"}`, 10, 0))

	m := NewMachine(store, models.MonitoringConfig{}, WithClock(clock.Now))

	history, err := m.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMachine_NeverLeavesAlertWithoutResolve(t *testing.T) {
	m, clock := newTestMachine(t)
	ctx := context.Background()

	require.NoError(t, m.EnterAlertState(ctx, "alert:1", "spike"))

	for i := 0; i < 200; i++ {
		clock.Advance(15 * time.Second)

		rec, err := m.CheckAndTransition(ctx)
		require.NoError(t, err)
		require.Nil(t, rec)
	}
}

func TestMachine_StoreFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := kv.NewMockStore(ctrl)

	store.EXPECT().Set(gomock.Any(), kv.LastActivityKey, gomock.Any(), 900*time.Second).Return(assert.AnError)

	m := NewMachine(store, models.DefaultMonitoringConfig())

	changed, err := m.Wake(context.Background(), "write_operation")
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, changed)
}
