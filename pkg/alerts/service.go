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

package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/state"
)

const (
	defaultPatternDays = 7
	alertStateReason   = "alert_created"
	anomalyTypePrefix  = "application_error:"
	defaultAnomalySrc  = "application"
)

// Service implements AlertService.
type Service struct {
	store    AlertStore
	machine  state.StateMachine
	notifier Notifier
	cfg      models.MonitoringConfig
	now      func() time.Time
}

var _ AlertService = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithNotifier sets the notifier used for auto-notified alerts.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// NewService creates the alert service. machine may be nil when alerts
// should not drive the monitoring state.
func NewService(store AlertStore, machine state.StateMachine, cfg models.MonitoringConfig, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		machine: machine,
		cfg:     cfg.WithDefaults(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func validateAlert(alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("%w: alert is nil", ErrInvalidAlert)
	}

	if alert.AlertType == "" {
		return fmt.Errorf("%w: alert_type is required", ErrInvalidAlert)
	}

	if alert.Priority != "" && !alert.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidAlert, alert.Priority)
	}

	for _, ch := range alert.Channels {
		if !models.KnownChannel(ch) {
			return fmt.Errorf("%w: unknown channel %q", ErrInvalidAlert, ch)
		}
	}

	return nil
}

func (s *Service) CreateAlert(ctx context.Context, alert *models.Alert, autoNotify, deduplicate bool) (*models.Alert, error) {
	if err := validateAlert(alert); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	if alert.Title == "" {
		alert.Title = alert.AlertType
	}

	if alert.Category == "" {
		alert.Category = models.CategorySystem
	}

	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = now
	}

	alert.Status = models.AlertStatusActive
	alert.LastTriggeredAt = alert.TriggeredAt
	alert.CreatedAt = now
	alert.UpdatedAt = now
	alert.NotificationCount = 1
	alert.NotificationSentAt = nil
	alert.Priority = ComputeSeverity(alert)

	if len(alert.Metadata.Recommendations) == 0 {
		alert.Metadata.Recommendations = Recommend(alert)
	}

	var since *time.Time

	if deduplicate {
		t := now.Add(-s.cfg.DedupWindow)
		since = &t
	}

	stored, duplicate, err := s.store.Create(ctx, alert, since)
	if err != nil {
		return nil, err
	}

	if duplicate {
		log.Printf("Alert %s/%s folded into alert %d (count %d)",
			alert.AlertType, alert.Resource, stored.ID, stored.NotificationCount)

		return stored, nil
	}

	log.Printf("Created alert %d: %s (%s)", stored.ID, stored.Title, stored.Priority)

	if s.machine != nil && (stored.Priority.Rank() >= models.PriorityHigh.Rank() || stored.RuleID != nil) {
		if err := s.machine.EnterAlertState(ctx, strconv.FormatInt(stored.ID, 10), alertStateReason); err != nil {
			log.Printf("Error entering alert state for alert %d: %v", stored.ID, err)
		}
	}

	if autoNotify {
		s.notify(ctx, stored)
	}

	return stored, nil
}

func (s *Service) notify(ctx context.Context, alert *models.Alert) {
	if s.notifier == nil {
		return
	}

	results := s.notifier.Notify(ctx, alert)

	if err := s.store.RecordDeliveries(ctx, alert.ID, results); err != nil {
		log.Printf("Error recording deliveries for alert %d: %v", alert.ID, err)
		return
	}

	for i := range results {
		if !results[i].Success {
			continue
		}

		if sentAt := results[i].SentAt; alert.NotificationSentAt == nil || sentAt.After(*alert.NotificationSentAt) {
			alert.NotificationSentAt = &sentAt
		}
	}
}

// ReportAnomaly raises an application error alert. Database related errors
// are categorized as database alerts.
func (s *Service) ReportAnomaly(ctx context.Context, report *models.AnomalyReport) (*models.Alert, error) {
	if report == nil || (report.ErrorType == "" && report.Message == "") {
		return nil, fmt.Errorf("%w: error_type or message is required", ErrInvalidAlert)
	}

	errorType := report.ErrorType
	if errorType == "" {
		errorType = "unknown"
	}

	source := report.Source
	if source == "" {
		source = defaultAnomalySrc
	}

	resource := report.Resource
	if resource == "" {
		resource = source
	}

	category := models.CategoryApplication

	lower := strings.ToLower(errorType + " " + report.Message)
	if strings.Contains(lower, "database") || strings.Contains(lower, "sql") {
		category = models.CategoryDatabase
	}

	alert := &models.Alert{
		AlertType: anomalyTypePrefix + errorType,
		Title:     fmt.Sprintf("%s in %s", errorType, resource),
		Message:   report.Message,
		Priority:  models.AlertPriority(strings.ToLower(report.Severity)),
		Category:  category,
		Source:    source,
		Resource:  resource,
		Channels:  report.Channels,
		Metadata: models.Metadata{
			StackTrace:    report.StackTrace,
			ErrorType:     errorType,
			AffectedUsers: report.AffectedUsers,
			ErrorCount:    report.ErrorCount,
		},
	}

	if !alert.Priority.Valid() {
		alert.Priority = ""
	}

	return s.CreateAlert(ctx, alert, true, true)
}

func (s *Service) GetAlert(ctx context.Context, id int64) (*models.Alert, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetActiveAlerts(
	ctx context.Context, priority *models.AlertPriority, category *models.AlertCategory) ([]models.Alert, error) {
	status := models.AlertStatusActive

	return s.store.List(ctx, models.AlertFilter{
		Status:   &status,
		Priority: priority,
		Category: category,
	})
}

func (s *Service) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) Deliveries(ctx context.Context, alertID int64) ([]models.DeliveryResult, error) {
	return s.store.Deliveries(ctx, alertID)
}

// GetAlertPatterns aggregates the alerts triggered in the last days days.
// A non-positive days uses one week.
func (s *Service) GetAlertPatterns(ctx context.Context, days int) (*models.AlertPatterns, error) {
	if days <= 0 {
		days = defaultPatternDays
	}

	since := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	list, err := s.store.List(ctx, models.AlertFilter{Since: &since})
	if err != nil {
		return nil, err
	}

	patterns := &models.AlertPatterns{
		Days:       days,
		Total:      len(list),
		ByType:     make(map[string]int),
		ByPriority: make(map[string]int),
		ByCategory: make(map[string]int),
		ByHour:     make(map[int]int),
	}

	var resolutionTotal time.Duration

	for i := range list {
		a := &list[i]

		patterns.ByType[a.AlertType]++
		patterns.ByPriority[string(a.Priority)]++
		patterns.ByCategory[string(a.Category)]++
		patterns.ByHour[a.TriggeredAt.UTC().Hour()]++

		if a.ResolvedAt != nil {
			patterns.Resolved++
			resolutionTotal += a.ResolvedAt.Sub(a.TriggeredAt)
		}
	}

	if patterns.Resolved > 0 {
		patterns.AverageResolutionMinutes = resolutionTotal.Minutes() / float64(patterns.Resolved)
	}

	return patterns, nil
}

func (s *Service) Acknowledge(ctx context.Context, id int64, by, notes string) (*models.Alert, error) {
	return s.transition(ctx, id, models.AlertStatusAcknowledged,
		[]models.AlertStatus{models.AlertStatusActive},
		func(a *models.Alert, now time.Time) {
			a.AcknowledgedBy = by
			a.AcknowledgedAt = &now
			a.AcknowledgedNotes = notes
		})
}

// Resolve marks the alert resolved. When no open alerts remain the state
// machine is told so it can leave ALERT once its timers allow.
func (s *Service) Resolve(ctx context.Context, id int64, by, notes string) (*models.Alert, error) {
	alert, err := s.transition(ctx, id, models.AlertStatusResolved,
		[]models.AlertStatus{models.AlertStatusActive, models.AlertStatusAcknowledged, models.AlertStatusSuppressed},
		func(a *models.Alert, now time.Time) {
			a.ResolvedBy = by
			a.ResolvedAt = &now
			a.ResolutionNotes = notes
		})
	if err != nil {
		return nil, err
	}

	// Resolve hook: calls StateMachine.ResolveAlert only when no open alerts remain.
	s.releaseState(ctx)

	return alert, nil
}

func (s *Service) Suppress(ctx context.Context, id int64, by, reason string, hours float64) (*models.Alert, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("%w: suppression hours must be positive", ErrInvalidAlert)
	}

	alert, err := s.transition(ctx, id, models.AlertStatusSuppressed,
		[]models.AlertStatus{models.AlertStatusActive, models.AlertStatusAcknowledged},
		func(a *models.Alert, now time.Time) {
			until := now.Add(time.Duration(hours * float64(time.Hour)))
			a.SuppressedBy = by
			a.SuppressedAt = &now
			a.SuppressedUntil = &until
			a.SuppressedReason = reason
		})
	if err != nil {
		return nil, err
	}

	s.releaseState(ctx)

	return alert, nil
}

func (s *Service) transition(
	ctx context.Context,
	id int64,
	to models.AlertStatus,
	allowed []models.AlertStatus,
	apply func(*models.Alert, time.Time),
) (*models.Alert, error) {
	alert, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(allowed, alert.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, alert.Status, to)
	}

	from := alert.Status
	now := s.now().UTC()

	alert.Status = to
	alert.UpdatedAt = now
	apply(alert, now)

	if err := s.store.UpdateLifecycle(ctx, alert, from); err != nil {
		return nil, err
	}

	log.Printf("Alert %d %s -> %s", id, from, to)

	return alert, nil
}

// releaseState resolves the monitoring alert state once nothing is open.
func (s *Service) releaseState(ctx context.Context) {
	if s.machine == nil {
		return
	}

	open, err := s.store.CountOpen(ctx)
	if err != nil {
		log.Printf("Error counting open alerts: %v", err)
		return
	}

	if open > 0 {
		return
	}

	if err := s.machine.ResolveAlert(ctx); err != nil {
		log.Printf("Error resolving monitoring alert state: %v", err)
	}
}

func (s *Service) ExpireAlerts(ctx context.Context, staleAfter time.Duration) (int, error) {
	now := s.now().UTC()

	suppressed, errSuppressed := s.store.ExpireSuppressed(ctx, now)
	stale, errStale := s.store.ExpireStale(ctx, now.Add(-staleAfter), now)

	total := suppressed + stale
	if total > 0 {
		s.releaseState(ctx)
	}

	return total, errors.Join(errSuppressed, errStale)
}

func (s *Service) PurgeResolved(ctx context.Context, retention time.Duration) (int, error) {
	return s.store.DeleteResolved(ctx, s.now().UTC().Add(-retention))
}
