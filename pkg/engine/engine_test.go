package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/metrics"
	"github.com/carverauto/pulse/pkg/metrics/sources"
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/rules"
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

type recordingHandler struct {
	channel models.AlertChannel

	mu   sync.Mutex
	sent []models.Alert
}

func (h *recordingHandler) Channel() models.AlertChannel { return h.channel }

func (h *recordingHandler) Send(_ context.Context, alert *models.Alert) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sent = append(h.sent, *alert)

	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.sent)
}

type testEngine struct {
	*Engine
	clock *testClock
	slack *recordingHandler
	cpu   *gauge
}

// gauge is a settable metric value read by a FuncSource.
type gauge struct {
	mu    sync.Mutex
	value float64
}

func (g *gauge) Set(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.value = v
}

func (g *gauge) Get() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.value
}

func newTestEngine(t *testing.T, cfg *Config) *testEngine {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := kv.NewMemoryStore(kv.WithClock(clock.Now))

	t.Cleanup(func() { _ = store.Close() })

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "pulse.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })

	if cfg == nil {
		cfg = &Config{}
	}

	cfg.Sources.DisableRuntime = true
	cfg.Sources.DisableDatabase = true
	cfg.DefaultChannels = []models.AlertChannel{models.ChannelSlack}

	cpu := &gauge{value: 20}
	slack := &recordingHandler{channel: models.ChannelSlack}

	e, err := New(cfg, store, database,
		WithClock(clock.Now),
		WithHandlers(slack),
		WithSource(sources.NewFuncSource("host", true, func(context.Context) (map[string]float64, error) {
			return map[string]float64{"cpu_percent": cpu.Get()}, nil
		})),
		WithSource(sources.NewFuncSource("app", false, func(context.Context) (map[string]float64, error) {
			return map[string]float64{"queue_depth": 7}, nil
		})),
	)
	require.NoError(t, err)

	return &testEngine{Engine: e, clock: clock, slack: slack, cpu: cpu}
}

func (te *testEngine) state(t *testing.T) models.MonitoringState {
	t.Helper()

	st, err := te.machine.Current(context.Background())
	require.NoError(t, err)

	return st
}

func TestEngine_TickRaisesRuleAlert(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, te.machine.Init(ctx))
	require.NoError(t, te.subscriber.Start(ctx))

	t.Cleanup(func() { _ = te.subscriber.Stop() })

	require.NoError(t, te.Rules().Create(ctx, &models.AlertRule{
		Name:            "high_cpu",
		MetricName:      "cpu_percent",
		Operator:        models.OpGreater,
		Threshold:       80,
		DurationSeconds: 60,
		CooldownSeconds: 300,
		Severity:        models.PriorityMedium,
		Enabled:         true,
	}))

	te.cpu.Set(92)

	// IDLE only runs the critical source.
	interval := te.Tick(ctx)
	assert.Equal(t, te.monitoring.IdleInterval, interval)

	_, err := te.Collector().CurrentValue(ctx, "queue_depth")
	require.ErrorIs(t, err, metrics.ErrNoValue)

	require.Eventually(t, func() bool {
		active, err := te.evaluator.ActiveViolations(ctx)
		return err == nil && len(active) == 1
	}, 2*time.Second, 10*time.Millisecond)

	te.clock.Advance(61 * time.Second)

	interval = te.Tick(ctx)
	assert.Equal(t, te.monitoring.AlertInterval, interval)
	assert.Equal(t, models.StateAlert, te.state(t))

	active, err := te.Alerts().GetActiveAlerts(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "high_cpu", active[0].Resource)
	assert.Equal(t, models.PriorityMedium, active[0].Priority)
	assert.Equal(t, 1, te.slack.count())
	assert.Empty(t, te.kick, "entering ALERT inside a tick must not schedule another tick")

	// Cooldown holds while the violation persists.
	te.clock.Advance(15 * time.Second)
	te.Tick(ctx)
	assert.Equal(t, 1, te.slack.count())

	value, err := te.Collector().CurrentValue(ctx, "queue_depth")
	require.NoError(t, err)
	assert.InDelta(t, 7.0, value, 0.001)
}

func TestEngine_TickTransitionWaitsForNextInterval(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, te.machine.Init(ctx))

	woke, err := te.machine.Wake(ctx, "critical_user_action")
	require.NoError(t, err)
	require.True(t, woke)
	assert.Empty(t, te.kick)

	te.clock.Advance(te.monitoring.IdleTimeout + time.Second)

	interval := te.Tick(ctx)
	assert.Equal(t, models.StateIdle, te.state(t))
	assert.Equal(t, te.monitoring.IdleInterval, interval)
	assert.Empty(t, te.kick)
}

func TestEngine_Middleware(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, te.machine.Init(ctx))

	handler := te.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		path   string
		want   models.MonitoringState
		kicked bool
	}{
		{name: "health check stays idle", method: http.MethodGet, path: "/health", want: models.StateIdle},
		{name: "booking wakes", method: http.MethodPost, path: "/api/bookings", want: models.StateActive, kicked: true},
		{name: "already active", method: http.MethodPost, path: "/api/payments", want: models.StateActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, te.state(t))

			select {
			case <-te.kick:
				assert.True(t, tt.kicked, "unexpected kick")
			default:
				assert.False(t, tt.kicked, "expected a kick")
			}
		})
	}
}

func TestEngine_RunMaintenance(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, te.machine.Init(ctx))

	_, err := te.Alerts().CreateAlert(ctx, &models.Alert{
		AlertType: "disk_full",
		Resource:  "/var",
		Priority:  models.PriorityLow,
	}, false, false)
	require.NoError(t, err)

	te.clock.Advance(25 * time.Hour)

	report := te.RunMaintenance(ctx)
	assert.Equal(t, 1, report.Cleanup.Expired)

	active, err := te.Alerts().GetActiveAlerts(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEngine_StartStop(t *testing.T) {
	rulesFile := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(rulesFile, []byte(`
[[rules]]
name = "slow_db"
metric_name = "db_query_ms"
operator = ">"
threshold = 500.0
duration_seconds = 30
cooldown_seconds = 600
severity = "high"
category = "database"
`), 0o600))

	te := newTestEngine(t, &Config{RulesFile: rulesFile})
	ctx := context.Background()

	require.NoError(t, te.Start(ctx))
	require.ErrorIs(t, te.Start(ctx), ErrAlreadyStarted)

	rule, err := te.Rules().GetByName(ctx, "slow_db")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, rule.Severity)
	assert.True(t, rule.Enabled)

	assert.Equal(t, models.StateIdle, te.state(t))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	require.NoError(t, te.Stop(stopCtx))
	require.NoError(t, te.Stop(stopCtx))
	assert.False(t, te.SubscriberStats().Running)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "negative rate", cfg: Config{NotifyRate: -1}, wantErr: true},
		{name: "unknown channel", cfg: Config{DefaultChannels: []models.AlertChannel{"pager"}}, wantErr: true},
		{
			name:    "snmp without oids",
			cfg:     Config{Sources: SourcesConfig{SNMP: []sources.SNMPConfig{{Host: "10.0.0.1"}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidConfig)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, defaultListenAddr, tt.cfg.ListenAddr)
			assert.Equal(t, defaultDBPath, tt.cfg.DBPath)
			assert.Equal(t, defaultNotifyBurst, tt.cfg.NotifyBurst)
			assert.Equal(t, time.Hour, tt.cfg.maintenanceInterval())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv(EnvRedisPassword, "hunter2")

	path := filepath.Join(t.TempDir(), "pulse.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = ":9000"
notify_rate = 0.5
maintenance_interval = "30m"

[redis]
address = "redis:6379"

[monitoring]
alert_interval = "10s"

[channels.email]
from = "alerts@example.com"
to = ["oncall@example.com"]

[[sources.snmp]]
host = "10.0.0.1"
oids = [{ oid = ".1.3.6.1.2.1.1.3.0", name = "uptime" }]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, "SG.test", cfg.Channels.Email.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.maintenanceInterval())
	assert.Equal(t, 10*time.Second, cfg.Monitoring.Model().AlertInterval)
	require.Len(t, cfg.Sources.SNMP, 1)
	assert.Equal(t, "snmp_10.0.0.1", cfg.Sources.SNMP[0].Name)
}

func TestLoad_PackagedSamples(t *testing.T) {
	for _, name := range []string{"pulse.toml", "pulse.json"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("..", "..", "packaging", "pulse", name))
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.DefaultChannels)
		})
	}

	list, err := rules.LoadRuleFile(filepath.Join("..", "..", "packaging", "pulse", "rules.toml"))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.False(t, list[2].Enabled)
}
