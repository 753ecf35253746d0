package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/models"
)

// MergeService combines two prisoners' alert records when their identities
// are unified upstream. Every alert the source prisoner held is soft deleted
// and a brand-new alert is minted on the destination for each incoming
// descriptor; alerts are never re-owned in place, which keeps each UUID
// permanently tied to one prison number's timeline.
type MergeService struct {
	alerts AlertStore
	codes  CodeStore
	logger *logrus.Logger
}

func NewMergeService(alerts AlertStore, codes CodeStore, logger *logrus.Logger) *MergeService {
	return &MergeService{alerts: alerts, codes: codes, logger: logger}
}

// Merge executes the reconciliation as one atomic unit of work and returns
// the full accounting of deleted and created alerts plus the ChangeSet the
// caller flushes after commit.
func (s *MergeService) Merge(ctx context.Context, req *models.MergeRequest) (*models.MergeResult, *ChangeSet, error) {
	codes := make([]string, 0, len(req.NewAlerts))
	for _, in := range req.NewAlerts {
		codes = append(codes, in.AlertCode)
	}
	byCode, err := resolveCodes(ctx, s.codes, codes)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	from := req.PrisonNumberMergeFrom
	to := req.PrisonNumberMergeTo
	result := &models.MergeResult{
		PrisonNumberMergeFrom: from,
		PrisonNumberMergeTo:   to,
	}
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, []string{from, to}, func(ctx context.Context) error {
		existing, err := s.alerts.FindByPrisonNumber(ctx, from)
		if err != nil {
			return fmt.Errorf("failed to load alerts for %s: %w", from, err)
		}
		for _, a := range existing {
			a.Delete(now, models.SystemUsername, models.SystemDisplayName, models.SourceNOMIS,
				fmt.Sprintf("Merge of prison number %s into %s", from, to))
			result.AlertsDeleted = append(result.AlertsDeleted, a.AlertUUID)
		}

		created := make([]*models.Alert, 0, len(req.NewAlerts))
		for _, in := range req.NewAlerts {
			warnIfRangeInverted(s.logger, to, in.AlertCode, in.ActiveFrom, in.ActiveTo)
			a := models.NewAlert(to, byCode[in.AlertCode], in.Description, in.AuthorisedBy, in.ActiveFrom, in.ActiveTo)
			a.Create(models.SystemUsername, models.SystemDisplayName, now, models.SourceNOMIS,
				fmt.Sprintf("Merged from prison number %s", from))
			created = append(created, a)
			result.AlertsCreated = append(result.AlertsCreated, models.MergedAlert{
				OffenderBookID: in.OffenderBookID,
				AlertSequence:  in.AlertSequence,
				AlertUUID:      a.AlertUUID,
			})
		}

		if err := s.alerts.SaveAll(ctx, append(existing, created...)); err != nil {
			return fmt.Errorf("failed to save merged alerts: %w", err)
		}

		// Re-read the destination so duplicate detection sees the final state.
		destination, err := s.alerts.FindByPrisonNumber(ctx, to)
		if err != nil {
			return fmt.Errorf("failed to load alerts for %s: %w", to, err)
		}
		warnDuplicateActives(s.logger, to, destination)

		changes.Register(from)
		changes.Register(to)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("Merged %s into %s: %d alerts deleted, %d created",
		from, to, len(result.AlertsDeleted), len(result.AlertsCreated))
	return result, changes, nil
}
