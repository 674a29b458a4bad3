package rules

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/metrics"
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

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}

type harness struct {
	clock     *testClock
	store     *kv.MemoryStore
	collector *metrics.Collector
	rules     *SQLiteStore
	eval      *Evaluator
	t0        time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &testClock{now: t0}
	store := kv.NewMemoryStore(kv.WithClock(clock.Now))

	t.Cleanup(func() { _ = store.Close() })

	cfg := models.DefaultMonitoringConfig()
	ruleStore := newTestStore(t)

	return &harness{
		clock:     clock,
		store:     store,
		collector: metrics.NewCollector(store, cfg, metrics.WithCollectorClock(clock.Now)),
		rules:     ruleStore,
		eval:      NewEvaluator(store, ruleStore, cfg, WithClock(clock.Now)),
		t0:        t0,
	}
}

// sample moves the clock to offset, pushes the value and evaluates it.
func (h *harness) sample(t *testing.T, offset time.Duration, metric string, value float64) {
	t.Helper()

	ts := h.t0.Add(offset)
	h.clock.Set(ts)

	require.NoError(t, h.collector.PushMetric(context.Background(), metric, value))
	require.NoError(t, h.eval.Evaluate(context.Background(), metric, value, ts))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op        models.Operator
		value     float64
		threshold float64
		want      bool
	}{
		{models.OpGreater, 81, 80, true},
		{models.OpGreater, 80, 80, false},
		{models.OpGreaterEqual, 80, 80, true},
		{models.OpLess, 79.9, 80, true},
		{models.OpLessEqual, 80.1, 80, false},
		{models.OpEqual, 80.00005, 80, true},
		{models.OpEqual, 80.001, 80, false},
		{models.OpNotEqual, 80.00005, 80, false},
		{models.OpNotEqual, 80.5, 80, true},
		{models.Operator("?"), 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.op, tt.value, tt.threshold, 1e-4))
		})
	}
}

func TestEvaluator_ScenarioA(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rule := cpuRule()
	require.NoError(t, h.rules.Create(ctx, rule))

	h.sample(t, 0, "cpu_percent", 85)

	ready, err := h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Empty(t, ready)

	h.sample(t, 30*time.Second, "cpu_percent", 90)

	ready, err = h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Empty(t, ready, "30s < 60s duration")

	h.sample(t, 65*time.Second, "cpu_percent", 88)

	ready, err = h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, rule.ID, ready[0].Rule.ID)
	assert.InDelta(t, 88.0, ready[0].CurrentValue, 0)
	assert.Equal(t, 65*time.Second, ready[0].Elapsed)
	assert.True(t, ready[0].Violation.FirstExceededAt.Equal(h.t0), "start time never moves")

	require.NoError(t, h.eval.StartCooldown(ctx, rule.ID, rule.CooldownSeconds))

	cooling, err := h.eval.InCooldown(ctx, rule.ID)
	require.NoError(t, err)
	assert.True(t, cooling)

	ttl, err := h.store.TTL(ctx, kv.CooldownKey(rule.ID))
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, ttl, "cooldown active until t=365")
}

func TestEvaluator_InstantRecovery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.rules.Create(ctx, cpuRule()))

	h.sample(t, 0, "cpu_percent", 95)

	active, err := h.eval.ActiveViolations(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	h.sample(t, 10*time.Second, "cpu_percent", 50)

	active, err = h.eval.ActiveViolations(ctx)
	require.NoError(t, err)
	assert.Empty(t, active, "cleared on the first recovered sample")

	h.sample(t, 20*time.Second, "cpu_percent", 95)

	active, err = h.eval.ActiveViolations(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].FirstExceededAt.Equal(h.t0.Add(20*time.Second)), "new breach restarts the clock")
}

func TestEvaluator_SubSecondBreachStart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.rules.Create(ctx, cpuRule()))

	start := h.t0.Add(900 * time.Millisecond)
	h.clock.Set(start)

	require.NoError(t, h.store.Set(ctx, kv.MetricValueKey("cpu_percent"), "85", 5*time.Minute))
	require.NoError(t, h.eval.HandleUpdate(ctx, models.MetricUpdate{Name: "cpu_percent", Value: 85, Timestamp: start}))

	active, err := h.eval.ActiveViolations(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].FirstExceededAt.Equal(start), "breach start keeps its milliseconds")

	h.clock.Set(h.t0.Add(60*time.Second + 500*time.Millisecond))

	ready, err := h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Empty(t, ready, "59.6s into a 60s breach")

	h.clock.Set(h.t0.Add(60*time.Second + 900*time.Millisecond))

	ready, err = h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, 60*time.Second, ready[0].Elapsed)
}

func TestEvaluator_FreshReadGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rule := cpuRule()
	require.NoError(t, h.rules.Create(ctx, rule))

	h.sample(t, 0, "cpu_percent", 95)
	h.clock.Set(h.t0.Add(90 * time.Second))

	// The live value recovered without an evaluated sample.
	require.NoError(t, h.store.Set(ctx, kv.MetricValueKey("cpu_percent"), "40", time.Minute))

	ready, err := h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Empty(t, ready)

	// Missing live value defers.
	require.NoError(t, h.store.Del(ctx, kv.MetricValueKey("cpu_percent")))

	ready, err = h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Empty(t, ready)

	require.NoError(t, h.store.Set(ctx, kv.MetricValueKey("cpu_percent"), "garbage", time.Minute))

	ready, err = h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Empty(t, ready)

	require.NoError(t, h.store.Set(ctx, kv.MetricValueKey("cpu_percent"), "96", time.Minute))

	ready, err = h.eval.ViolationsReadyForAlert(ctx)
	require.NoError(t, err)
	assert.Len(t, ready, 1)
}

func TestEvaluator_RuleCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockRuleStore(ctrl)

	clock := &testClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	e := NewEvaluator(kv.NewMemoryStore(), store, models.DefaultMonitoringConfig(), WithClock(clock.Now))
	ctx := context.Background()

	store.EXPECT().ListEnabled(gomock.Any()).Return([]models.AlertRule{*cpuRule()}, nil).Times(3)

	_, err := e.Rules(ctx, false)
	require.NoError(t, err)

	_, err = e.Rules(ctx, false)
	require.NoError(t, err, "served from cache")

	_, err = e.Rules(ctx, true)
	require.NoError(t, err, "forced reload")

	clock.Set(clock.Now().Add(61 * time.Second))

	rules, err := e.Rules(ctx, false)
	require.NoError(t, err, "reload after ttl")
	assert.Len(t, rules, 1)
}

func TestEvaluator_InvalidateDuringEvaluate(t *testing.T) {
	ctrl := gomock.NewController(t)
	ruleStore := NewMockRuleStore(ctrl)

	store := kv.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	e := NewEvaluator(store, ruleStore, models.DefaultMonitoringConfig())
	ctx := context.Background()

	rule := cpuRule()
	rule.ID = 7

	ruleStore.EXPECT().ListEnabled(gomock.Any()).Return([]models.AlertRule{*rule}, nil).AnyTimes()

	done := make(chan struct{})

	var wg sync.WaitGroup

	defer func() {
		close(done)
		wg.Wait()
	}()

	wg.Add(1)

	go func() {
		defer wg.Done()

		for {
			select {
			case <-done:
				return
			default:
				e.Invalidate()
			}
		}
	}()

	for i := 0; i < 200; i++ {
		require.NoError(t, e.Evaluate(ctx, "cpu_percent", 95, time.Now()))

		active, err := e.ActiveViolations(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1, "sample %d was evaluated against the loaded rules", i)

		require.NoError(t, e.ClearViolation(ctx, rule.ID))
	}
}

func TestEvaluator_RuleStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockRuleStore(ctrl)

	e := NewEvaluator(kv.NewMemoryStore(), store, models.DefaultMonitoringConfig())

	store.EXPECT().ListEnabled(gomock.Any()).Return(nil, errors.New("database is locked"))

	err := e.Evaluate(context.Background(), "cpu_percent", 99, time.Now())
	require.ErrorContains(t, err, "database is locked")
}

func TestEvaluator_ClearViolationAndDisabledRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rule := cpuRule()
	require.NoError(t, h.rules.Create(ctx, rule))

	h.sample(t, 0, "cpu_percent", 95)
	require.NoError(t, h.eval.ClearViolation(ctx, rule.ID))

	active, err := h.eval.ActiveViolations(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, h.rules.SetEnabled(ctx, rule.ID, false))
	h.eval.Invalidate()

	h.sample(t, 5*time.Second, "cpu_percent", 95)

	active, err = h.eval.ActiveViolations(ctx)
	require.NoError(t, err)
	assert.Empty(t, active, "disabled rules are not evaluated")
}

func TestProcessor_OneAlertPerCooldown(t *testing.T) {
	h := newHarness(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	rule := cpuRule()
	require.NoError(t, h.rules.Create(ctx, rule))

	creator := NewMockAlertCreator(ctrl)

	var raised []*models.Alert

	creator.EXPECT().CreateAlert(gomock.Any(), gomock.Any(), true, true).
		DoAndReturn(func(_ context.Context, a *models.Alert, _, _ bool) (*models.Alert, error) {
			a.ID = int64(len(raised) + 1)
			raised = append(raised, a)

			return a, nil
		}).Times(2)

	p := NewProcessor(h.eval, creator)

	// Sample every 5s for ten minutes while continuously violating.
	total := 0

	for offset := time.Duration(0); offset <= 10*time.Minute; offset += 5 * time.Second {
		h.sample(t, offset, "cpu_percent", 90)

		n, err := p.Process(ctx)
		require.NoError(t, err)

		total += n
	}

	// First alert at t=60s, cooldown 300s, second at t=360s.
	assert.Equal(t, 2, total)
	require.Len(t, raised, 2)

	first := raised[0]
	assert.Equal(t, "threshold:cpu_percent", first.AlertType)
	assert.Equal(t, "high_cpu", first.Resource)
	assert.Equal(t, AlertSource, first.Source)
	require.NotNil(t, first.RuleID)
	assert.Equal(t, rule.ID, *first.RuleID)
	require.NotNil(t, first.ThresholdValue)
	assert.InDelta(t, 80.0, *first.ThresholdValue, 0)
	assert.Equal(t, []models.AlertChannel{models.ChannelSlack}, first.Channels)
	assert.Equal(t, ">", first.Metadata.Extra.String("operator"))
}

func TestProcessor_FailedCreateRetriesNextTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	eval := NewMockRuleEvaluator(ctrl)
	creator := NewMockAlertCreator(ctrl)

	rv := models.ReadyViolation{Rule: *cpuRule(), CurrentValue: 90}
	rv.Rule.ID = 7

	gomock.InOrder(
		eval.EXPECT().ViolationsReadyForAlert(gomock.Any()).Return([]models.ReadyViolation{rv}, nil),
		creator.EXPECT().CreateAlert(gomock.Any(), gomock.Any(), true, true).Return(nil, errors.New("disk full")),
		eval.EXPECT().ViolationsReadyForAlert(gomock.Any()).Return([]models.ReadyViolation{rv}, nil),
		creator.EXPECT().CreateAlert(gomock.Any(), gomock.Any(), true, true).Return(&models.Alert{ID: 1}, nil),
		eval.EXPECT().StartCooldown(gomock.Any(), int64(7), 300).Return(nil),
	)

	p := NewProcessor(eval, creator)

	n, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
