package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/rules"
	"github.com/carverauto/pulse/pkg/state"
)

type serviceHarness struct {
	clock   *testClock
	db      *db.DB
	store   *SQLiteStore
	machine *state.MockStateMachine
	svc     *Service
}

func newServiceHarness(t *testing.T, opts ...ServiceOption) *serviceHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := &testClock{now: t0}
	database := openTestDB(t)
	store := NewSQLiteStore(database)
	machine := state.NewMockStateMachine(ctrl)

	opts = append([]ServiceOption{WithClock(clock.Now)}, opts...)

	return &serviceHarness{
		clock:   clock,
		db:      database,
		store:   store,
		machine: machine,
		svc:     NewService(store, machine, models.DefaultMonitoringConfig(), opts...),
	}
}

func slowQuery() *models.Alert {
	return &models.Alert{
		AlertType: "db_slow_query",
		Title:     "Slow query",
		Resource:  "bookings table",
		Category:  models.CategoryPerformance,
	}
}

func TestService_ScenarioD(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	first, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.NotificationCount)

	h.clock.Advance(20 * time.Minute)

	second, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.NotificationCount)
	assert.True(t, second.LastTriggeredAt.Equal(t0.Add(20*time.Minute)))

	all, err := h.svc.ListAlerts(ctx, models.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].NotificationCount)

	// Without deduplication every call stores a row.
	_, err = h.svc.CreateAlert(ctx, slowQuery(), false, false)
	require.NoError(t, err)

	// Past the window the original no longer absorbs triggers.
	h.clock.Advance(61 * time.Minute)

	third, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestService_ScenarioASeverity(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	ruleStore := rules.NewSQLiteStore(h.db)
	rule := &models.AlertRule{
		Name:            "high_cpu",
		MetricName:      "cpu_percent",
		Operator:        models.OpGreater,
		Threshold:       80,
		DurationSeconds: 60,
		CooldownSeconds: 300,
		Enabled:         true,
	}
	require.NoError(t, ruleStore.Create(ctx, rule))

	rv := &models.ReadyViolation{
		Rule:         *rule,
		Violation:    models.RuleViolation{RuleID: rule.ID, FirstExceededAt: t0},
		CurrentValue: 88,
		Elapsed:      65 * time.Second,
	}

	h.machine.EXPECT().EnterAlertState(gomock.Any(), "1", "alert_created").Return(nil)

	alert, err := h.svc.CreateAlert(ctx, rules.BuildAlert(rv), true, true)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, alert.Priority, "12.5% overage")
	assert.Equal(t, models.AlertStatusActive, alert.Status)
	assert.Contains(t, alert.Metadata.Recommendations, "Identify the processes with the highest CPU usage")

	stored, err := h.svc.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RuleID)
	assert.Equal(t, rule.ID, *stored.RuleID)
}

func TestService_HighSeverityEntersAlertState(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	h.machine.EXPECT().EnterAlertState(gomock.Any(), gomock.Any(), "alert_created").Return(errors.New("store down"))

	alert, err := h.svc.ReportAnomaly(ctx, &models.AnomalyReport{
		ErrorType:     "ConnectionError",
		Message:       "database connection refused",
		Source:        "api",
		AffectedUsers: 20,
	})
	require.NoError(t, err, "state machine failures do not fail the alert")
	assert.Equal(t, models.PriorityHigh, alert.Priority)
	assert.Equal(t, models.CategoryDatabase, alert.Category)
	assert.Equal(t, "application_error:ConnectionError", alert.AlertType)
	assert.Equal(t, "api", alert.Resource)
	assert.Equal(t, 20, alert.Metadata.AffectedUsers)
	assert.Contains(t, alert.Metadata.Recommendations, "Verify database availability and credentials")
}

func TestService_ReportAnomalyValidation(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.svc.ReportAnomaly(context.Background(), &models.AnomalyReport{})
	require.ErrorIs(t, err, ErrInvalidAlert)

	_, err = h.svc.CreateAlert(context.Background(), &models.Alert{}, false, false)
	require.ErrorIs(t, err, ErrInvalidAlert)

	_, err = h.svc.CreateAlert(context.Background(),
		&models.Alert{AlertType: "x", Channels: []models.AlertChannel{"pager"}}, false, false)
	require.ErrorIs(t, err, ErrInvalidAlert)
}

func TestService_Lifecycle(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	alert, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)

	h.clock.Advance(5 * time.Minute)

	acked, err := h.svc.Acknowledge(ctx, alert.ID, "oncall", "looking")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusAcknowledged, acked.Status)
	assert.Equal(t, "looking", acked.AcknowledgedNotes)

	_, err = h.svc.Acknowledge(ctx, alert.ID, "oncall", "again")
	require.ErrorIs(t, err, ErrInvalidTransition)

	h.clock.Advance(25 * time.Minute)
	h.machine.EXPECT().ResolveAlert(gomock.Any()).Return(nil)

	resolved, err := h.svc.Resolve(ctx, alert.ID, "oncall", "index added")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(t0.Add(30*time.Minute)))

	_, err = h.svc.Resolve(ctx, alert.ID, "oncall", "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = h.svc.Suppress(ctx, alert.ID, "oncall", "noise", 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = h.svc.Acknowledge(ctx, 404, "oncall", "")
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestService_ResolveKeepsAlertStateWhileOthersOpen(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	first, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)

	other := slowQuery()
	other.Resource = "users table"

	second, err := h.svc.CreateAlert(ctx, other, false, true)
	require.NoError(t, err)

	// No ResolveAlert expected: one alert is still open.
	_, err = h.svc.Resolve(ctx, first.ID, "oncall", "")
	require.NoError(t, err)

	h.machine.EXPECT().ResolveAlert(gomock.Any()).Return(nil).Times(1)

	_, err = h.svc.Resolve(ctx, second.ID, "oncall", "")
	require.NoError(t, err)
}

func TestService_SuppressThenExpire(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	alert, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)

	_, err = h.svc.Suppress(ctx, alert.ID, "oncall", "maintenance", 0)
	require.ErrorIs(t, err, ErrInvalidAlert)

	h.machine.EXPECT().ResolveAlert(gomock.Any()).Return(nil)

	suppressed, err := h.svc.Suppress(ctx, alert.ID, "oncall", "maintenance", 2)
	require.NoError(t, err)
	require.NotNil(t, suppressed.SuppressedUntil)
	assert.True(t, suppressed.SuppressedUntil.Equal(t0.Add(2*time.Hour)))

	h.clock.Advance(3 * time.Hour)
	h.machine.EXPECT().ResolveAlert(gomock.Any()).Return(nil)

	n, err := h.svc.ExpireAlerts(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := h.svc.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusExpired, got.Status)
}

func TestService_AutoNotify(t *testing.T) {
	ctrl := gomock.NewController(t)

	slack := NewMockChannelHandler(ctrl)
	slack.EXPECT().Channel().Return(models.ChannelSlack).AnyTimes()
	slack.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	email := NewMockChannelHandler(ctrl)
	email.EXPECT().Channel().Return(models.ChannelEmail).AnyTimes()
	email.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("sendgrid: 401"))

	clock := &testClock{now: t0}
	dispatcher := NewDispatcher(WithDispatcherClock(clock.Now))
	dispatcher.RegisterHandler(slack)
	dispatcher.RegisterHandler(email)

	h := newServiceHarness(t, WithNotifier(dispatcher))
	ctx := context.Background()

	alert := slowQuery()
	alert.Channels = []models.AlertChannel{models.ChannelSlack, models.ChannelEmail}

	created, err := h.svc.CreateAlert(ctx, alert, true, true)
	require.NoError(t, err)
	require.NotNil(t, created.NotificationSentAt)

	stored, err := h.svc.GetAlert(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.NotificationSentAt)
	assert.True(t, stored.NotificationSentAt.Equal(t0))

	deliveries, err := h.svc.Deliveries(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.True(t, deliveries[0].Success)
	assert.False(t, deliveries[1].Success)
	assert.Contains(t, deliveries[1].Error, "401")

	// Duplicates are not re-sent.
	_, err = h.svc.CreateAlert(ctx, slowQuery(), true, true)
	require.NoError(t, err)
}

func TestService_AutoNotifyAllFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := NewMockNotifier(ctrl)

	h := newServiceHarness(t, WithNotifier(notifier))
	ctx := context.Background()

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return([]models.DeliveryResult{
		{Channel: models.ChannelWebhook, Error: "timeout", SentAt: t0},
	})

	created, err := h.svc.CreateAlert(ctx, slowQuery(), true, true)
	require.NoError(t, err)
	assert.Nil(t, created.NotificationSentAt)

	stored, err := h.svc.GetAlert(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.NotificationSentAt)
}

func TestService_PersistenceFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockAlertStore(ctrl)

	svc := NewService(store, nil, models.DefaultMonitoringConfig())

	store.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, errors.New("disk I/O error"))

	_, err := svc.CreateAlert(context.Background(), slowQuery(), true, true)
	require.ErrorContains(t, err, "disk I/O error")
}

func TestService_GetActiveAlerts(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	h.machine.EXPECT().EnterAlertState(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	critical := slowQuery()
	critical.Resource = "payments"
	critical.Category = models.CategorySecurity
	critical.Priority = models.PriorityCritical

	_, err := h.svc.CreateAlert(ctx, critical, false, true)
	require.NoError(t, err)

	medium, err := h.svc.CreateAlert(ctx, slowQuery(), false, true)
	require.NoError(t, err)

	_, err = h.svc.Acknowledge(ctx, medium.ID, "oncall", "")
	require.NoError(t, err)

	active, err := h.svc.GetActiveAlerts(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "payments", active[0].Resource)

	p := models.PriorityLow

	active, err = h.svc.GetActiveAlerts(ctx, &p, nil)
	require.NoError(t, err)
	assert.Empty(t, active)

	c := models.CategorySecurity

	active, err = h.svc.GetActiveAlerts(ctx, nil, &c)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestService_GetAlertPatterns(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	h.machine.EXPECT().ResolveAlert(gomock.Any()).Return(nil).AnyTimes()

	a, err := h.svc.CreateAlert(ctx, slowQuery(), false, false)
	require.NoError(t, err)

	h.clock.Advance(time.Hour)

	b, err := h.svc.CreateAlert(ctx, slowQuery(), false, false)
	require.NoError(t, err)

	h.clock.Advance(30 * time.Minute)

	_, err = h.svc.Resolve(ctx, a.ID, "oncall", "")
	require.NoError(t, err)

	_, err = h.svc.Resolve(ctx, b.ID, "oncall", "")
	require.NoError(t, err)

	patterns, err := h.svc.GetAlertPatterns(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, patterns.Days)
	assert.Equal(t, 2, patterns.Total)
	assert.Equal(t, 2, patterns.ByType["db_slow_query"])
	assert.Equal(t, 2, patterns.ByPriority["medium"])
	assert.Equal(t, 2, patterns.ByCategory["performance"])
	assert.Equal(t, map[int]int{12: 1, 13: 1}, patterns.ByHour)
	assert.Equal(t, 2, patterns.Resolved)
	assert.InDelta(t, 60.0, patterns.AverageResolutionMinutes, 1e-9, "(90 + 30) / 2")
}
