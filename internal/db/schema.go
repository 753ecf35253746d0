package db

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS alert_type (
		code TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		deactivated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS alert_code (
		code TEXT PRIMARY KEY,
		alert_type_code TEXT NOT NULL REFERENCES alert_type(code),
		description TEXT NOT NULL,
		deactivated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS alert (
		id BIGSERIAL PRIMARY KEY,
		alert_uuid UUID NOT NULL UNIQUE,
		prison_number TEXT NOT NULL,
		alert_code TEXT NOT NULL REFERENCES alert_code(code),
		description TEXT NOT NULL DEFAULT '',
		authorised_by TEXT NOT NULL DEFAULT '',
		active_from DATE NOT NULL,
		active_to DATE,
		created_at TIMESTAMPTZ NOT NULL,
		migrated_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_prison_number ON alert (prison_number) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_alert_code ON alert (alert_code) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS alert_audit_event (
		id BIGSERIAL PRIMARY KEY,
		alert_id BIGINT NOT NULL REFERENCES alert(id) ON DELETE CASCADE,
		action TEXT NOT NULL,
		description TEXT NOT NULL,
		actioned_at TIMESTAMPTZ NOT NULL,
		actioned_by TEXT NOT NULL,
		actioned_by_display_name TEXT NOT NULL,
		source TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_audit_event_alert_id ON alert_audit_event (alert_id)`,
	`CREATE TABLE IF NOT EXISTS alert_comment (
		comment_uuid UUID PRIMARY KEY,
		alert_id BIGINT NOT NULL REFERENCES alert(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		created_by TEXT NOT NULL,
		created_by_display_name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_comment_alert_id ON alert_comment (alert_id)`,
	`CREATE TABLE IF NOT EXISTS bulk_run (
		id UUID PRIMARY KEY,
		requested_at TIMESTAMPTZ NOT NULL,
		requested_by TEXT NOT NULL,
		alert_code TEXT NOT NULL,
		mode TEXT NOT NULL,
		cleanup_mode TEXT NOT NULL DEFAULT '',
		prison_numbers TEXT[] NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		successful BOOLEAN NOT NULL,
		errors TEXT[],
		outcome JSONB
	)`,
}

// EnsureSchema creates the tables and indexes the service expects. Every
// statement is idempotent so startup can run it unconditionally.
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
