package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"prisoner-alerts-api/internal/models"
)

const alertColumns = `a.id, a.alert_uuid, a.prison_number, a.description, a.authorised_by,
	a.active_from, a.active_to, a.created_at, a.migrated_at,
	c.code, c.alert_type_code, c.description, c.deactivated_at`

const alertFrom = ` FROM alert a JOIN alert_code c ON c.code = a.alert_code `

// FindByPrisonNumber loads a prisoner's current alerts, excluding soft-deleted
// rows, with audit events and comments attached.
func (d *DB) FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + alertFrom + `
		WHERE a.prison_number = $1 AND a.deleted_at IS NULL ORDER BY a.id`
	return d.findAlerts(ctx, query, prisonNumber)
}

// FindByPrisonNumberAndCode loads a prisoner's current alerts with the given
// code, excluding soft-deleted rows.
func (d *DB) FindByPrisonNumberAndCode(ctx context.Context, prisonNumber, code string) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + alertFrom + `
		WHERE a.prison_number = $1 AND a.alert_code = $2 AND a.deleted_at IS NULL ORDER BY a.id`
	return d.findAlerts(ctx, query, prisonNumber, code)
}

// FindActiveByCode loads every alert with the given code that is in force
// today, across all prisoners. Active to is exclusive.
func (d *DB) FindActiveByCode(ctx context.Context, code string) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + alertFrom + `
		WHERE a.alert_code = $1 AND a.deleted_at IS NULL
		AND a.active_from <= CURRENT_DATE
		AND (a.active_to IS NULL OR a.active_to > CURRENT_DATE)
		ORDER BY a.id`
	return d.findAlerts(ctx, query, code)
}

// FindByUUID loads one alert regardless of deletion state, or nil when no row
// exists. Callers inspect the audit trail to distinguish deleted alerts.
func (d *DB) FindByUUID(ctx context.Context, alertUUID uuid.UUID) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + alertFrom + ` WHERE a.alert_uuid = $1`
	alerts, err := d.findAlerts(ctx, query, alertUUID)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, nil
	}
	return alerts[0], nil
}

func (d *DB) findAlerts(ctx context.Context, query string, args ...any) ([]*models.Alert, error) {
	rows, err := d.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, err
	}
	if err := d.loadChildren(ctx, alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func scanAlerts(rows pgx.Rows) ([]*models.Alert, error) {
	defer rows.Close()
	var alerts []*models.Alert
	for rows.Next() {
		var (
			a          models.Alert
			activeFrom time.Time
			activeTo   *time.Time
		)
		err := rows.Scan(
			&a.ID,
			&a.AlertUUID,
			&a.PrisonNumber,
			&a.Description,
			&a.AuthorisedBy,
			&activeFrom,
			&activeTo,
			&a.CreatedAt,
			&a.MigratedAt,
			&a.Code.Code,
			&a.Code.TypeCode,
			&a.Code.Description,
			&a.Code.DeactivatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.ActiveFrom = models.DateOf(activeFrom)
		if activeTo != nil {
			to := models.DateOf(*activeTo)
			a.ActiveTo = &to
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}
	return alerts, nil
}

// loadChildren attaches audit events and comments in one batched query each.
func (d *DB) loadChildren(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(alerts))
	byID := make(map[int64]*models.Alert, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}
	q := d.conn(ctx)

	rows, err := q.Query(ctx, `
		SELECT alert_id, id, action, description, actioned_at, actioned_by, actioned_by_display_name, source
		FROM alert_audit_event WHERE alert_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query audit events: %w", err)
	}
	for rows.Next() {
		var (
			alertID        int64
			ev             models.AuditEvent
			action, source string
		)
		if err := rows.Scan(&alertID, &ev.ID, &action, &ev.Description, &ev.ActionedAt,
			&ev.ActionedBy, &ev.ActionedByDisplayName, &source); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.Action = models.AuditAction(action)
		ev.Source = models.Source(source)
		byID[alertID].Audit = append(byID[alertID].Audit, ev)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read audit events: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT alert_id, comment_uuid, text, created_at, created_by, created_by_display_name
		FROM alert_comment WHERE alert_id = ANY($1) ORDER BY created_at, comment_uuid`, ids)
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	for rows.Next() {
		var (
			alertID int64
			c       models.Comment
		)
		if err := rows.Scan(&alertID, &c.CommentUUID, &c.Text, &c.CreatedAt,
			&c.CreatedBy, &c.CreatedByDisplayName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		byID[alertID].Comments = append(byID[alertID].Comments, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read comments: %w", err)
	}
	return nil
}

// Save upserts the alert row keyed on its UUID and rewrites its audit events
// and comments. The denormalised deleted_at column keeps current-state
// queries cheap; the audit trail stays the source of truth.
func (d *DB) Save(ctx context.Context, a *models.Alert) error {
	q := d.conn(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO alert (alert_uuid, prison_number, alert_code, description, authorised_by,
			active_from, active_to, created_at, migrated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (alert_uuid) DO UPDATE SET
			description = EXCLUDED.description,
			authorised_by = EXCLUDED.authorised_by,
			active_from = EXCLUDED.active_from,
			active_to = EXCLUDED.active_to,
			migrated_at = EXCLUDED.migrated_at,
			deleted_at = EXCLUDED.deleted_at
		RETURNING id`,
		a.AlertUUID, a.PrisonNumber, a.Code.Code, a.Description, a.AuthorisedBy,
		a.ActiveFrom, nullableDate(a.ActiveTo), a.CreatedAt, a.MigratedAt, a.DeletedAt(),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to save alert %s: %w", a.AlertUUID, err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM alert_audit_event WHERE alert_id = $1`, a.ID); err != nil {
		return fmt.Errorf("failed to clear audit events for alert %s: %w", a.AlertUUID, err)
	}
	for i := range a.Audit {
		ev := &a.Audit[i]
		err := q.QueryRow(ctx, `
			INSERT INTO alert_audit_event (alert_id, action, description, actioned_at, actioned_by, actioned_by_display_name, source)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			a.ID, string(ev.Action), ev.Description, ev.ActionedAt,
			ev.ActionedBy, ev.ActionedByDisplayName, string(ev.Source),
		).Scan(&ev.ID)
		if err != nil {
			return fmt.Errorf("failed to save audit event for alert %s: %w", a.AlertUUID, err)
		}
	}

	if _, err := q.Exec(ctx, `DELETE FROM alert_comment WHERE alert_id = $1`, a.ID); err != nil {
		return fmt.Errorf("failed to clear comments for alert %s: %w", a.AlertUUID, err)
	}
	for _, c := range a.Comments {
		_, err := q.Exec(ctx, `
			INSERT INTO alert_comment (comment_uuid, alert_id, text, created_at, created_by, created_by_display_name)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.CommentUUID, a.ID, c.Text, c.CreatedAt, c.CreatedBy, c.CreatedByDisplayName)
		if err != nil {
			return fmt.Errorf("failed to save comment for alert %s: %w", a.AlertUUID, err)
		}
	}
	return nil
}

// SaveAll persists the alerts in order.
func (d *DB) SaveAll(ctx context.Context, alerts []*models.Alert) error {
	for _, a := range alerts {
		if err := d.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func nullableDate(d *models.Date) any {
	if d == nil {
		return nil
	}
	return *d
}
