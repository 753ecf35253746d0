package db

import (
	"context"
	"fmt"
	"time"

	"prisoner-alerts-api/internal/models"
)

// FindByCode returns one alert code, or nil when it does not exist.
func (d *DB) FindByCode(ctx context.Context, code string) (*models.AlertCode, error) {
	codes, err := d.FindByCodes(ctx, []string{code})
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return &codes[0], nil
}

// FindByCodes returns the alert codes that exist among the given codes.
func (d *DB) FindByCodes(ctx context.Context, codes []string) ([]models.AlertCode, error) {
	rows, err := d.conn(ctx).Query(ctx, `
		SELECT code, alert_type_code, description, deactivated_at
		FROM alert_code WHERE code = ANY($1) ORDER BY code`, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert codes: %w", err)
	}
	defer rows.Close()

	var found []models.AlertCode
	for rows.Next() {
		var c models.AlertCode
		if err := rows.Scan(&c.Code, &c.TypeCode, &c.Description, &c.DeactivatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert code: %w", err)
		}
		found = append(found, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert codes: %w", err)
	}
	return found, nil
}

// ListTypes returns the alert-type taxonomy with codes nested under their
// types. Inactive types and codes are filtered out unless asked for.
func (d *DB) ListTypes(ctx context.Context, includeInactive bool) ([]models.AlertType, error) {
	q := d.conn(ctx)

	rows, err := q.Query(ctx, `SELECT code, description, deactivated_at FROM alert_type ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert types: %w", err)
	}
	var types []models.AlertType
	byCode := make(map[string]int)
	for rows.Next() {
		var t models.AlertType
		if err := rows.Scan(&t.Code, &t.Description, &t.DeactivatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan alert type: %w", err)
		}
		if !includeInactive && !t.IsActive() {
			continue
		}
		byCode[t.Code] = len(types)
		types = append(types, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert types: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT code, alert_type_code, description, deactivated_at FROM alert_code ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert codes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.AlertCode
		if err := rows.Scan(&c.Code, &c.TypeCode, &c.Description, &c.DeactivatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert code: %w", err)
		}
		if !includeInactive && !c.IsActive() {
			continue
		}
		if i, ok := byCode[c.TypeCode]; ok {
			types[i].Codes = append(types[i].Codes, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert codes: %w", err)
	}
	return types, nil
}

// CreateCode adds a code to the catalog. The parent type must exist and the
// code must be new.
func (d *DB) CreateCode(ctx context.Context, req *models.CreateAlertCodeRequest) (*models.AlertCode, error) {
	q := d.conn(ctx)

	var typeExists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM alert_type WHERE code = $1)`, req.TypeCode).Scan(&typeExists); err != nil {
		return nil, fmt.Errorf("failed to check alert type %s: %w", req.TypeCode, err)
	}
	if !typeExists {
		return nil, models.NewNotFound("alert type", req.TypeCode)
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO alert_code (code, alert_type_code, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING`,
		req.Code, req.TypeCode, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert code %s: %w", req.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, models.NewAlreadyExists("alert code %s already exists", req.Code)
	}
	return &models.AlertCode{Code: req.Code, TypeCode: req.TypeCode, Description: req.Description}, nil
}

// DeactivateCode stamps the code inactive as of now.
func (d *DB) DeactivateCode(ctx context.Context, code string) (*models.AlertCode, error) {
	now := time.Now()
	return d.setCodeDeactivatedAt(ctx, code, &now)
}

// ReactivateCode clears the code's deactivation stamp.
func (d *DB) ReactivateCode(ctx context.Context, code string) (*models.AlertCode, error) {
	return d.setCodeDeactivatedAt(ctx, code, nil)
}

func (d *DB) setCodeDeactivatedAt(ctx context.Context, code string, at *time.Time) (*models.AlertCode, error) {
	tag, err := d.conn(ctx).Exec(ctx, `UPDATE alert_code SET deactivated_at = $2 WHERE code = $1`, code, at)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert code %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, models.NewNotFound("alert code", code)
	}
	return d.FindByCode(ctx, code)
}
