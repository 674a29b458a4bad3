package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"

	"github.com/carverauto/pulse/pkg/models"
)

func newHandler(ctrl *gomock.Controller, ch models.AlertChannel) *MockChannelHandler {
	h := NewMockChannelHandler(ctrl)
	h.EXPECT().Channel().Return(ch).AnyTimes()

	return h
}

func TestDispatcher_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := &testClock{now: t0}

	webhook := newHandler(ctrl, models.ChannelWebhook)
	webhook.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	sms := newHandler(ctrl, models.ChannelSMS)
	sms.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("gateway 503"))

	d := NewDispatcher(WithDispatcherClock(clock.Now))
	d.RegisterHandler(webhook)
	d.RegisterHandler(sms)

	assert.ElementsMatch(t, []models.AlertChannel{models.ChannelWebhook, models.ChannelSMS}, d.Channels())

	alert := &models.Alert{
		ID: 7,
		Channels: []models.AlertChannel{
			models.ChannelWebhook, models.ChannelSMS, models.ChannelDiscord, models.ChannelWebhook,
		},
	}

	results := d.Notify(context.Background(), alert)
	require.Len(t, results, 3, "duplicate channels are sent once")

	assert.True(t, results[0].Success)
	assert.Equal(t, int64(7), results[0].AlertID)
	assert.True(t, results[0].SentAt.Equal(t0))

	assert.False(t, results[1].Success)
	assert.Equal(t, "gateway 503", results[1].Error)

	assert.Equal(t, models.ChannelDiscord, results[2].Channel)
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, ErrNoHandler.Error())
}

func TestDispatcher_DefaultChannels(t *testing.T) {
	ctrl := gomock.NewController(t)

	dashboard := newHandler(ctrl, models.ChannelDashboard)
	dashboard.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	d := NewDispatcher()
	d.RegisterHandler(dashboard)

	results := d.Notify(context.Background(), &models.Alert{ID: 1})
	require.Len(t, results, 1)
	assert.Equal(t, models.ChannelDashboard, results[0].Channel)
	assert.True(t, results[0].Success)
}

func TestDispatcher_RateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := &testClock{now: t0}

	slack := newHandler(ctrl, models.ChannelSlack)
	slack.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	d := NewDispatcher(WithRateLimit(rate.Every(time.Minute), 1), WithDispatcherClock(clock.Now))
	d.RegisterHandler(slack)

	alert := &models.Alert{Channels: []models.AlertChannel{models.ChannelSlack}}

	results := d.Notify(context.Background(), alert)
	assert.True(t, results[0].Success)

	results = d.Notify(context.Background(), alert)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, ErrRateLimited.Error())

	clock.Advance(time.Minute)

	results = d.Notify(context.Background(), alert)
	assert.True(t, results[0].Success, "bucket refilled")
}

func TestDispatcher_HandlerPanic(t *testing.T) {
	ctrl := gomock.NewController(t)

	email := newHandler(ctrl, models.ChannelEmail)
	email.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *models.Alert) error { panic("nil client") })

	d := NewDispatcher()
	d.RegisterHandler(email)

	results := d.Notify(context.Background(), &models.Alert{Channels: []models.AlertChannel{models.ChannelEmail}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "nil client")
}

func TestCleanupService(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockAlertService(ctrl)

	svc.EXPECT().ExpireAlerts(gomock.Any(), 24*time.Hour).Return(2, nil)
	svc.EXPECT().PurgeResolved(gomock.Any(), 30*24*time.Hour).Return(0, errors.New("locked"))

	report := NewCleanupService(svc, CleanupConfig{}).Cleanup(context.Background())
	assert.Equal(t, CleanupReport{Expired: 2}, report)
}
