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

// Package alerts stores, deduplicates, classifies and dispatches alerts.
package alerts

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/carverauto/pulse/pkg/alerts AlertStore,AlertService,ChannelHandler,Notifier

import (
	"context"
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

// AlertService defines the alert lifecycle operations.
type AlertService interface {
	// CreateAlert stores alert, or folds it into a recent matching active
	// alert when deduplicate is set, and optionally notifies its channels.
	CreateAlert(ctx context.Context, alert *models.Alert, autoNotify, deduplicate bool) (*models.Alert, error)

	// ReportAnomaly raises an application error alert.
	ReportAnomaly(ctx context.Context, report *models.AnomalyReport) (*models.Alert, error)

	GetAlert(ctx context.Context, id int64) (*models.Alert, error)
	GetActiveAlerts(ctx context.Context, priority *models.AlertPriority, category *models.AlertCategory) ([]models.Alert, error)
	ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	GetAlertPatterns(ctx context.Context, days int) (*models.AlertPatterns, error)
	Deliveries(ctx context.Context, alertID int64) ([]models.DeliveryResult, error)

	Acknowledge(ctx context.Context, id int64, by, notes string) (*models.Alert, error)
	Resolve(ctx context.Context, id int64, by, notes string) (*models.Alert, error)
	Suppress(ctx context.Context, id int64, by, reason string, hours float64) (*models.Alert, error)

	// ExpireAlerts moves lapsed suppressions and stale active alerts to
	// expired and returns how many changed.
	ExpireAlerts(ctx context.Context, staleAfter time.Duration) (int, error)

	// PurgeResolved deletes resolved alerts older than retention.
	PurgeResolved(ctx context.Context, retention time.Duration) (int, error)
}

// AlertStore defines the persistence operations for alerts.
type AlertStore interface {
	// Create inserts alert. When dedupSince is set, an active alert with the
	// same type and resource triggered at or after dedupSince is updated
	// instead and returned with true.
	Create(ctx context.Context, alert *models.Alert, dedupSince *time.Time) (*models.Alert, bool, error)

	Get(ctx context.Context, id int64) (*models.Alert, error)
	List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)

	// UpdateLifecycle writes the lifecycle fields of alert if its stored
	// status still equals expected.
	UpdateLifecycle(ctx context.Context, alert *models.Alert, expected models.AlertStatus) error

	// CountOpen returns the number of active and acknowledged alerts.
	CountOpen(ctx context.Context) (int, error)

	// RecordDeliveries stores per-channel results and stamps the alert's
	// notification time when any delivery succeeded.
	RecordDeliveries(ctx context.Context, alertID int64, results []models.DeliveryResult) error
	Deliveries(ctx context.Context, alertID int64) ([]models.DeliveryResult, error)

	// ExpireSuppressed expires suppressed alerts whose suppression ended
	// before now.
	ExpireSuppressed(ctx context.Context, now time.Time) (int, error)

	// ExpireStale expires active alerts last triggered before cutoff.
	ExpireStale(ctx context.Context, cutoff, now time.Time) (int, error)

	// DeleteResolved removes resolved alerts resolved before cutoff.
	DeleteResolved(ctx context.Context, cutoff time.Time) (int, error)
}

// ChannelHandler delivers alerts to one notification channel.
type ChannelHandler interface {
	Channel() models.AlertChannel
	Send(ctx context.Context, alert *models.Alert) error
}

// Notifier fans an alert out to its channels.
type Notifier interface {
	Notify(ctx context.Context, alert *models.Alert) []models.DeliveryResult
}
