package services

import (
	"context"

	"github.com/google/uuid"

	"prisoner-alerts-api/internal/models"
)

// AlertStore is the persistence surface the reconcilers depend on. Find
// methods exclude soft-deleted alerts. InTransaction runs fn as one atomic
// unit of work, serialised against other operations touching the same prison
// numbers; store calls made with the ctx passed to fn join that transaction.
// Lock extends the serialisation to prison numbers discovered mid-transaction.
type AlertStore interface {
	FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*models.Alert, error)
	FindByPrisonNumberAndCode(ctx context.Context, prisonNumber, code string) ([]*models.Alert, error)
	FindActiveByCode(ctx context.Context, code string) ([]*models.Alert, error)
	FindByUUID(ctx context.Context, alertUUID uuid.UUID) (*models.Alert, error)
	Save(ctx context.Context, alert *models.Alert) error
	SaveAll(ctx context.Context, alerts []*models.Alert) error
	InTransaction(ctx context.Context, prisonNumbers []string, fn func(ctx context.Context) error) error
	Lock(ctx context.Context, prisonNumbers []string) error
}

// CodeStore looks up the alert-code catalog. FindByCode returns nil when the
// code does not exist; callers decide the error taxonomy.
type CodeStore interface {
	FindByCode(ctx context.Context, code string) (*models.AlertCode, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.AlertCode, error)
}

// BulkRunStore persists the audit record of each bulk request.
type BulkRunStore interface {
	SaveBulkRun(ctx context.Context, run *models.BulkRun) error
}

// PrisonerSearch is the external identity resolver. Resolve returns the
// subset of the given prison numbers that exist upstream.
type PrisonerSearch interface {
	Resolve(ctx context.Context, prisonNumbers []string) ([]string, error)
}
