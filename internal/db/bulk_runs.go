package db

import (
	"context"
	"fmt"

	"prisoner-alerts-api/internal/models"
)

// SaveBulkRun inserts the audit record of one bulk request. Runs are written
// once, after the request finishes, whether it succeeded or not.
func (d *DB) SaveBulkRun(ctx context.Context, run *models.BulkRun) error {
	_, err := d.conn(ctx).Exec(ctx, `
		INSERT INTO bulk_run (id, requested_at, requested_by, alert_code, mode, cleanup_mode,
			prison_numbers, completed_at, successful, errors, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.RequestedAt, run.RequestedBy, run.AlertCode, string(run.Mode), string(run.CleanupMode),
		run.PrisonNumbers, run.CompletedAt, run.Successful, run.Errors, []byte(run.Outcome))
	if err != nil {
		return fmt.Errorf("failed to save bulk run %s: %w", run.ID, err)
	}
	return nil
}
