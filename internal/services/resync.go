package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/models"
)

// ResyncService wholesale-replaces a prisoner's alert set from the external
// system of record: every current alert is soft deleted and one new alert is
// created per incoming descriptor. Unlike merge, creations keep the original
// provenance supplied by the caller rather than the system actor.
type ResyncService struct {
	alerts AlertStore
	codes  CodeStore
	logger *logrus.Logger
}

func NewResyncService(alerts AlertStore, codes CodeStore, logger *logrus.Logger) *ResyncService {
	return &ResyncService{alerts: alerts, codes: codes, logger: logger}
}

// Resync replaces prisonNumber's alerts with the authoritative snapshot.
func (s *ResyncService) Resync(ctx context.Context, prisonNumber string, incoming []models.ResyncAlert) ([]models.ResyncedAlert, *ChangeSet, error) {
	codes := make([]string, 0, len(incoming))
	for _, in := range incoming {
		codes = append(codes, in.AlertCode)
	}
	byCode, err := resolveCodes(ctx, s.codes, codes)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	resynced := make([]models.ResyncedAlert, 0, len(incoming))
	changes := NewChangeSet()
	deleted := 0

	err = s.alerts.InTransaction(ctx, []string{prisonNumber}, func(ctx context.Context) error {
		existing, err := s.alerts.FindByPrisonNumber(ctx, prisonNumber)
		if err != nil {
			return fmt.Errorf("failed to load alerts for %s: %w", prisonNumber, err)
		}
		for _, a := range existing {
			a.Delete(now, models.SystemUsername, models.SystemDisplayName, models.SourceNOMIS,
				"Alert deleted via resynchronisation from NOMIS")
		}
		deleted = len(existing)

		created := make([]*models.Alert, 0, len(incoming))
		for _, in := range incoming {
			warnIfRangeInverted(s.logger, prisonNumber, in.AlertCode, in.ActiveFrom, in.ActiveTo)

			a := models.NewAlert(prisonNumber, byCode[in.AlertCode], in.Description, in.AuthorisedBy, in.ActiveFrom, in.ActiveTo)
			a.Create(models.SystemUsername, models.SystemDisplayName, in.CreatedAt, models.SourceNOMIS,
				"Alert resynchronised from NOMIS")
			if in.LastModifiedAt != nil {
				a.AuditEvent(models.AuditUpdated, "Alert updated in NOMIS", *in.LastModifiedAt,
					models.SystemUsername, models.SystemDisplayName, models.SourceNOMIS)
			}
			for _, c := range in.Comments {
				a.AddComment(c.Text, c.CreatedAt, c.CreatedBy, c.CreatedByDisplayName)
			}
			// Attribution comes from the system of record, not the system actor.
			a.Resync(in.CreatedBy, in.CreatedByDisplayName, in.LastModifiedBy, in.LastModifiedByDisplayName)

			created = append(created, a)
			resynced = append(resynced, models.ResyncedAlert{
				OffenderBookID: in.OffenderBookID,
				AlertSequence:  in.AlertSequence,
				AlertUUID:      a.AlertUUID,
			})
		}

		if err := s.alerts.SaveAll(ctx, append(existing, created...)); err != nil {
			return fmt.Errorf("failed to save resynced alerts: %w", err)
		}

		warnDuplicateActives(s.logger, prisonNumber, created)
		changes.Register(prisonNumber)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("Resynced alerts for %s: %d replaced with %d", prisonNumber, deleted, len(resynced))
	return resynced, changes, nil
}
