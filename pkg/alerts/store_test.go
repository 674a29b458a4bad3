package alerts

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/pulse/pkg/db"
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

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })

	return database
}

func storedAlert(alertType, resource string, at time.Time) *models.Alert {
	return &models.Alert{
		AlertType:         alertType,
		Title:             alertType + " on " + resource,
		Priority:          models.PriorityMedium,
		Category:          models.CategorySystem,
		Status:            models.AlertStatusActive,
		Resource:          resource,
		NotificationCount: 1,
		TriggeredAt:       at,
		LastTriggeredAt:   at,
		CreatedAt:         at,
		UpdatedAt:         at,
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	value, threshold := 92.5, 80.0

	alert := storedAlert("threshold:cpu_percent", "high_cpu", t0)
	alert.Message = "cpu_percent is 92.5"
	alert.Source = "rule_evaluator"
	alert.MetricName = "cpu_percent"
	alert.MetricValue = &value
	alert.ThresholdValue = &threshold
	alert.Channels = []models.AlertChannel{models.ChannelSlack, models.ChannelEmail}
	alert.Metadata.Recommendations = []string{"scale out"}
	alert.Metadata.AffectedUsers = 3
	require.NoError(t, alert.Metadata.Extra.Set("operator", ">"))
	require.NoError(t, alert.Metadata.Extra.Set("duration_seconds", 60))

	created, duplicate, err := s.Create(ctx, alert, nil)
	require.NoError(t, err)
	assert.False(t, duplicate)
	require.NotZero(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "threshold:cpu_percent", got.AlertType)
	assert.Equal(t, "high_cpu", got.Resource)
	assert.Equal(t, models.AlertStatusActive, got.Status)
	assert.Nil(t, got.RuleID)
	require.NotNil(t, got.MetricValue)
	assert.InDelta(t, 92.5, *got.MetricValue, 0)
	require.NotNil(t, got.ThresholdValue)
	assert.InDelta(t, 80.0, *got.ThresholdValue, 0)
	assert.Equal(t, alert.Channels, got.Channels)
	assert.Equal(t, []string{"scale out"}, got.Metadata.Recommendations)
	assert.Equal(t, 3, got.Metadata.AffectedUsers)
	assert.Equal(t, ">", got.Metadata.Extra.String("operator"))
	assert.Equal(t, "60", got.Metadata.Extra.String("duration_seconds"))
	assert.True(t, got.TriggeredAt.Equal(t0))
	assert.Nil(t, got.NotificationSentAt)
	assert.Nil(t, got.ResolvedAt)

	_, err = s.Get(ctx, 999)
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestSQLiteStore_Dedup(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	first, _, err := s.Create(ctx, storedAlert("db_slow_query", "bookings table", t0), nil)
	require.NoError(t, err)

	since := t0.Add(-time.Hour)
	later := t0.Add(10 * time.Minute)

	again, duplicate, err := s.Create(ctx, storedAlert("db_slow_query", "bookings table", later), &since)
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.NotificationCount)
	assert.True(t, again.LastTriggeredAt.Equal(later))
	assert.True(t, again.TriggeredAt.Equal(t0))

	// A different resource is a different alert.
	other, duplicate, err := s.Create(ctx, storedAlert("db_slow_query", "users table", later), &since)
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.NotEqual(t, first.ID, other.ID)

	// Outside the window a new row is created.
	late := t0.Add(2 * time.Hour)
	lateSince := late.Add(-time.Hour)

	third, duplicate, err := s.Create(ctx, storedAlert("db_slow_query", "bookings table", late), &lateSince)
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestSQLiteStore_DedupConcurrent(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	since := t0.Add(-time.Hour)

	const workers = 8

	var wg sync.WaitGroup

	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _, err := s.Create(ctx, storedAlert("disk_full", "/var", t0), &since)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	list, err := s.List(ctx, models.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, workers, list[0].NotificationCount)
}

func TestSQLiteStore_ListFilters(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	a := storedAlert("cpu", "web-1", t0)
	b := storedAlert("cpu", "web-2", t0.Add(time.Minute))
	b.Priority = models.PriorityHigh
	c := storedAlert("disk", "db-1", t0.Add(2*time.Minute))
	c.Category = models.CategoryDatabase

	for _, alert := range []*models.Alert{a, b, c} {
		_, _, err := s.Create(ctx, alert, nil)
		require.NoError(t, err)
	}

	high := models.PriorityHigh
	database := models.CategoryDatabase
	since := t0.Add(30 * time.Second)

	tests := []struct {
		name   string
		filter models.AlertFilter
		want   []string
	}{
		{name: "all newest first", filter: models.AlertFilter{}, want: []string{"db-1", "web-2", "web-1"}},
		{name: "priority", filter: models.AlertFilter{Priority: &high}, want: []string{"web-2"}},
		{name: "category", filter: models.AlertFilter{Category: &database}, want: []string{"db-1"}},
		{name: "type", filter: models.AlertFilter{AlertType: "cpu"}, want: []string{"web-2", "web-1"}},
		{name: "resource", filter: models.AlertFilter{Resource: "web-1"}, want: []string{"web-1"}},
		{name: "since", filter: models.AlertFilter{Since: &since}, want: []string{"db-1", "web-2"}},
		{name: "limit", filter: models.AlertFilter{Limit: 1}, want: []string{"db-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.List(ctx, tt.filter)
			require.NoError(t, err)

			got := make([]string, 0, len(list))
			for i := range list {
				got = append(got, list[i].Resource)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStore_UpdateLifecycleIsConditional(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	alert, _, err := s.Create(ctx, storedAlert("cpu", "web-1", t0), nil)
	require.NoError(t, err)

	ackAt := t0.Add(time.Minute)
	alert.Status = models.AlertStatusAcknowledged
	alert.AcknowledgedBy = "oncall"
	alert.AcknowledgedAt = &ackAt
	alert.UpdatedAt = ackAt

	require.NoError(t, s.UpdateLifecycle(ctx, alert, models.AlertStatusActive))

	// Stored status is no longer active.
	require.ErrorIs(t, s.UpdateLifecycle(ctx, alert, models.AlertStatusActive), ErrInvalidTransition)

	got, err := s.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusAcknowledged, got.Status)
	assert.Equal(t, "oncall", got.AcknowledgedBy)
	require.NotNil(t, got.AcknowledgedAt)
	assert.True(t, got.AcknowledgedAt.Equal(ackAt))

	open, err := s.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, open)
}

func TestSQLiteStore_Deliveries(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	alert, _, err := s.Create(ctx, storedAlert("cpu", "web-1", t0), nil)
	require.NoError(t, err)

	require.NoError(t, s.RecordDeliveries(ctx, alert.ID, []models.DeliveryResult{
		{AlertID: alert.ID, Channel: models.ChannelEmail, Error: "smtp down", SentAt: t0},
	}))

	got, err := s.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NotificationSentAt, "failed deliveries do not stamp the alert")

	sent := t0.Add(time.Second)
	require.NoError(t, s.RecordDeliveries(ctx, alert.ID, []models.DeliveryResult{
		{AlertID: alert.ID, Channel: models.ChannelSlack, Success: true, SentAt: sent},
	}))

	got, err = s.Get(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NotificationSentAt)
	assert.True(t, got.NotificationSentAt.Equal(sent))

	deliveries, err := s.Deliveries(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Equal(t, models.ChannelEmail, deliveries[0].Channel)
	assert.False(t, deliveries[0].Success)
	assert.Equal(t, "smtp down", deliveries[0].Error)
	assert.True(t, deliveries[1].Success)
}

func TestSQLiteStore_Maintenance(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	stale, _, err := s.Create(ctx, storedAlert("cpu", "stale", t0), nil)
	require.NoError(t, err)

	fresh, _, err := s.Create(ctx, storedAlert("cpu", "fresh", t0.Add(23*time.Hour)), nil)
	require.NoError(t, err)

	suppressed, _, err := s.Create(ctx, storedAlert("cpu", "muted", t0), nil)
	require.NoError(t, err)

	until := t0.Add(2 * time.Hour)
	suppressed.Status = models.AlertStatusSuppressed
	suppressed.SuppressedUntil = &until
	require.NoError(t, s.UpdateLifecycle(ctx, suppressed, models.AlertStatusActive))

	resolved, _, err := s.Create(ctx, storedAlert("cpu", "done", t0), nil)
	require.NoError(t, err)

	resolvedAt := t0.Add(time.Hour)
	resolved.Status = models.AlertStatusResolved
	resolved.ResolvedAt = &resolvedAt
	require.NoError(t, s.UpdateLifecycle(ctx, resolved, models.AlertStatusActive))

	now := t0.Add(25 * time.Hour)

	n, err := s.ExpireSuppressed(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.ExpireStale(ctx, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteResolved(ctx, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusExpired, got.Status)

	got, err = s.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusActive, got.Status)

	got, err = s.Get(ctx, suppressed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusExpired, got.Status)

	_, err = s.Get(ctx, resolved.ID)
	require.ErrorIs(t, err, ErrAlertNotFound)
}
