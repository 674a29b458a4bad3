package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create alert_rules",
		sql: `
		CREATE TABLE IF NOT EXISTS alert_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			metric_name TEXT NOT NULL,
			operator TEXT NOT NULL,
			threshold REAL NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			cooldown_seconds INTEGER NOT NULL DEFAULT 0,
			severity TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			channels TEXT NOT NULL DEFAULT '[]',
			enabled BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alert_rules_metric
			ON alert_rules(metric_name, enabled);
		`,
	},
	{
		version: 2,
		name:    "create alerts",
		sql: `
		CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alert_type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			resource TEXT NOT NULL DEFAULT '',
			rule_id INTEGER,
			metric_name TEXT NOT NULL DEFAULT '',
			metric_value REAL,
			threshold_value REAL,
			metadata TEXT NOT NULL DEFAULT '{}',
			channels TEXT NOT NULL DEFAULT '[]',
			notification_count INTEGER NOT NULL DEFAULT 0,
			notification_sent_at TIMESTAMP,
			triggered_at TIMESTAMP NOT NULL,
			last_triggered_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			acknowledged_by TEXT NOT NULL DEFAULT '',
			acknowledged_at TIMESTAMP,
			acknowledged_notes TEXT NOT NULL DEFAULT '',
			resolved_by TEXT NOT NULL DEFAULT '',
			resolved_at TIMESTAMP,
			resolution_notes TEXT NOT NULL DEFAULT '',
			suppressed_by TEXT NOT NULL DEFAULT '',
			suppressed_at TIMESTAMP,
			suppressed_until TIMESTAMP,
			suppressed_reason TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (rule_id) REFERENCES alert_rules(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_dedup
			ON alerts(alert_type, resource, status, triggered_at);
		CREATE INDEX IF NOT EXISTS idx_alerts_status_priority
			ON alerts(status, priority);
		CREATE INDEX IF NOT EXISTS idx_alerts_created
			ON alerts(created_at);
		`,
	},
	{
		version: 3,
		name:    "create alert_deliveries",
		sql: `
		CREATE TABLE IF NOT EXISTS alert_deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alert_id INTEGER NOT NULL,
			channel TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			sent_at TIMESTAMP NOT NULL,
			FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_alert_deliveries_alert
			ON alert_deliveries(alert_id);
		`,
	},
}

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}

			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				m.version, m.name, time.Now().UTC())

			return err
		})
		if err != nil {
			return fmt.Errorf("%w %d (%s): %w", ErrFailedToMigrate, m.version, m.name, err)
		}

		log.Printf("Applied migration %d: %s", m.version, m.name)
	}

	return nil
}

// SchemaVersion returns the highest applied migration.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)

	return v, err
}
