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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/models"
)

const alertColumns = `id, alert_type, title, message, priority, category, status, source, resource,
	rule_id, metric_name, metric_value, threshold_value, metadata, channels,
	notification_count, notification_sent_at, triggered_at, last_triggered_at, created_at, updated_at,
	acknowledged_by, acknowledged_at, acknowledged_notes,
	resolved_by, resolved_at, resolution_notes,
	suppressed_by, suppressed_at, suppressed_until, suppressed_reason`

// SQLiteStore implements AlertStore on the alerts and alert_deliveries tables.
type SQLiteStore struct {
	db *db.DB

	// mu serializes dedup lookups with their insert inside this process;
	// the IMMEDIATE transaction covers other processes.
	mu sync.Mutex
}

var _ AlertStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates an alert store over database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Create(ctx context.Context, alert *models.Alert, dedupSince *time.Time) (*models.Alert, bool, error) {
	metadata, err := json.Marshal(alert.Metadata)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode metadata: %w", err)
	}

	channels, err := json.Marshal(channelsOrEmpty(alert.Channels))
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode channels: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		stored    *models.Alert
		duplicate bool
	)

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if dedupSince != nil {
			id, err := findDuplicate(ctx, tx, alert.AlertType, alert.Resource, *dedupSince)
			if err == nil {
				if _, err := tx.ExecContext(ctx, `
					UPDATE alerts
					SET notification_count = notification_count + 1,
						last_triggered_at = ?,
						metric_value = COALESCE(?, metric_value),
						updated_at = ?
					WHERE id = ?`,
					alert.LastTriggeredAt, nullFloat(alert.MetricValue), alert.UpdatedAt, id,
				); err != nil {
					return fmt.Errorf("failed to update duplicate alert: %w", err)
				}

				stored, err = getAlert(ctx, tx, id)
				duplicate = true

				return err
			}

			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to look up duplicate alert: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO alerts
			(alert_type, title, message, priority, category, status, source, resource,
			 rule_id, metric_name, metric_value, threshold_value, metadata, channels,
			 notification_count, triggered_at, last_triggered_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			alert.AlertType, alert.Title, alert.Message, string(alert.Priority), string(alert.Category),
			string(alert.Status), alert.Source, alert.Resource, nullInt(alert.RuleID), alert.MetricName,
			nullFloat(alert.MetricValue), nullFloat(alert.ThresholdValue), string(metadata), string(channels),
			alert.NotificationCount, alert.TriggeredAt, alert.LastTriggeredAt, alert.CreatedAt, alert.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}

		alert.ID = id
		stored = alert

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return stored, duplicate, nil
}

func findDuplicate(ctx context.Context, q db.Executor, alertType, resource string, since time.Time) (int64, error) {
	var id int64

	err := q.QueryRowContext(ctx, `
		SELECT id FROM alerts
		WHERE alert_type = ? AND resource = ? AND status = ? AND triggered_at >= ?
		ORDER BY triggered_at DESC, id DESC
		LIMIT 1`,
		alertType, resource, string(models.AlertStatusActive), since,
	).Scan(&id)

	return id, err
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*models.Alert, error) {
	return getAlert(ctx, s.db, id)
}

func getAlert(ctx context.Context, q db.Executor, id int64) (*models.Alert, error) {
	alert, err := scanAlert(q.QueryRowContext(ctx, "SELECT "+alertColumns+" FROM alerts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrAlertNotFound, id)
	}

	return alert, err
}

func (s *SQLiteStore) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	query := "SELECT " + alertColumns + " FROM alerts"

	var conditions []string

	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}

	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
	}

	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, string(*filter.Category))
	}

	if filter.AlertType != "" {
		conditions = append(conditions, "alert_type = ?")
		args = append(args, filter.AlertType)
	}

	if filter.Resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, filter.Resource)
	}

	if filter.Since != nil {
		conditions = append(conditions, "triggered_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	if filter.Until != nil {
		conditions = append(conditions, "triggered_at <= ?")
		args = append(args, filter.Until.UTC())
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY triggered_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer db.CloseRows(rows)

	var out []models.Alert

	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return out, nil
}

func (s *SQLiteStore) UpdateLifecycle(ctx context.Context, alert *models.Alert, expected models.AlertStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE alerts
		SET status = ?, updated_at = ?,
			acknowledged_by = ?, acknowledged_at = ?, acknowledged_notes = ?,
			resolved_by = ?, resolved_at = ?, resolution_notes = ?,
			suppressed_by = ?, suppressed_at = ?, suppressed_until = ?, suppressed_reason = ?
		WHERE id = ? AND status = ?`,
		string(alert.Status), alert.UpdatedAt,
		alert.AcknowledgedBy, nullTime(alert.AcknowledgedAt), alert.AcknowledgedNotes,
		alert.ResolvedBy, nullTime(alert.ResolvedAt), alert.ResolutionNotes,
		alert.SuppressedBy, nullTime(alert.SuppressedAt), nullTime(alert.SuppressedUntil), alert.SuppressedReason,
		alert.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update alert %d: %w", alert.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: alert %d is no longer %s", ErrInvalidTransition, alert.ID, expected)
	}

	return nil
}

func (s *SQLiteStore) CountOpen(ctx context.Context) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alerts WHERE status IN (?, ?)",
		string(models.AlertStatusActive), string(models.AlertStatusAcknowledged),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count open alerts: %w", err)
	}

	return n, nil
}

func (s *SQLiteStore) RecordDeliveries(ctx context.Context, alertID int64, results []models.DeliveryResult) error {
	if len(results) == 0 {
		return nil
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var sentAt *time.Time

		for i := range results {
			r := &results[i]

			if _, err := tx.ExecContext(ctx,
				"INSERT INTO alert_deliveries (alert_id, channel, success, error, sent_at) VALUES (?, ?, ?, ?, ?)",
				alertID, string(r.Channel), r.Success, r.Error, r.SentAt.UTC(),
			); err != nil {
				return fmt.Errorf("failed to record delivery: %w", err)
			}

			if r.Success && (sentAt == nil || r.SentAt.After(*sentAt)) {
				t := r.SentAt.UTC()
				sentAt = &t
			}
		}

		if sentAt == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE alerts SET notification_sent_at = ?, updated_at = ? WHERE id = ?",
			*sentAt, *sentAt, alertID,
		); err != nil {
			return fmt.Errorf("failed to stamp notification time: %w", err)
		}

		return nil
	})
}

func (s *SQLiteStore) Deliveries(ctx context.Context, alertID int64) ([]models.DeliveryResult, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT alert_id, channel, success, error, sent_at FROM alert_deliveries WHERE alert_id = ? ORDER BY id",
		alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer db.CloseRows(rows)

	var out []models.DeliveryResult

	for rows.Next() {
		var (
			r       models.DeliveryResult
			channel string
		)

		if err := rows.Scan(&r.AlertID, &channel, &r.Success, &r.Error, &r.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}

		r.Channel = models.AlertChannel(channel)
		out = append(out, r)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) ExpireSuppressed(ctx context.Context, now time.Time) (int, error) {
	return s.exec(ctx, `
		UPDATE alerts SET status = ?, updated_at = ?
		WHERE status = ? AND suppressed_until IS NOT NULL AND suppressed_until < ?`,
		string(models.AlertStatusExpired), now.UTC(), string(models.AlertStatusSuppressed), now.UTC())
}

func (s *SQLiteStore) ExpireStale(ctx context.Context, cutoff, now time.Time) (int, error) {
	return s.exec(ctx, `
		UPDATE alerts SET status = ?, updated_at = ?
		WHERE status = ? AND last_triggered_at < ?`,
		string(models.AlertStatusExpired), now.UTC(), string(models.AlertStatusActive), cutoff.UTC())
}

func (s *SQLiteStore) DeleteResolved(ctx context.Context, cutoff time.Time) (int, error) {
	return s.exec(ctx,
		"DELETE FROM alerts WHERE status = ? AND resolved_at IS NOT NULL AND resolved_at < ?",
		string(models.AlertStatusResolved), cutoff.UTC())
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...interface{}) (int, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update alerts: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(n), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row scanner) (*models.Alert, error) {
	var a models.Alert

	var priority, category, status, metadata, channels string

	var ruleID sql.NullInt64

	var metricValue, thresholdValue sql.NullFloat64

	var sentAt, ackAt, resolvedAt, suppressedAt, suppressedUntil sql.NullTime

	err := row.Scan(
		&a.ID, &a.AlertType, &a.Title, &a.Message, &priority, &category, &status, &a.Source, &a.Resource,
		&ruleID, &a.MetricName, &metricValue, &thresholdValue, &metadata, &channels,
		&a.NotificationCount, &sentAt, &a.TriggeredAt, &a.LastTriggeredAt, &a.CreatedAt, &a.UpdatedAt,
		&a.AcknowledgedBy, &ackAt, &a.AcknowledgedNotes,
		&a.ResolvedBy, &resolvedAt, &a.ResolutionNotes,
		&a.SuppressedBy, &suppressedAt, &suppressedUntil, &a.SuppressedReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	a.Priority = models.AlertPriority(priority)
	a.Category = models.AlertCategory(category)
	a.Status = models.AlertStatus(status)

	if ruleID.Valid {
		a.RuleID = &ruleID.Int64
	}

	if metricValue.Valid {
		a.MetricValue = &metricValue.Float64
	}

	if thresholdValue.Valid {
		a.ThresholdValue = &thresholdValue.Float64
	}

	a.NotificationSentAt = timePtr(sentAt)
	a.AcknowledgedAt = timePtr(ackAt)
	a.ResolvedAt = timePtr(resolvedAt)
	a.SuppressedAt = timePtr(suppressedAt)
	a.SuppressedUntil = timePtr(suppressedUntil)

	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of alert %d: %w", a.ID, err)
		}
	}

	if channels != "" {
		if err := json.Unmarshal([]byte(channels), &a.Channels); err != nil {
			return nil, fmt.Errorf("failed to decode channels of alert %d: %w", a.ID, err)
		}
	}

	if len(a.Channels) == 0 {
		a.Channels = nil
	}

	return &a, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time

	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *i, Valid: true}
}

func channelsOrEmpty(ch []models.AlertChannel) []models.AlertChannel {
	if ch == nil {
		return []models.AlertChannel{}
	}

	return ch
}
