package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/models"
)

// AlertService handles single-alert operations: create, migrate, update,
// delete, comments and reads. Unlike the reconcilers, direct creation guards
// against duplicating an active alert for the same prisoner and code.
type AlertService struct {
	alerts AlertStore
	codes  CodeStore
	logger *logrus.Logger
}

func NewAlertService(alerts AlertStore, codes CodeStore, logger *logrus.Logger) *AlertService {
	return &AlertService{alerts: alerts, codes: codes, logger: logger}
}

// Create adds one alert, rejecting unknown or inactive codes and duplicate
// active alerts.
func (s *AlertService) Create(ctx context.Context, req *models.CreateAlertRequest, actor models.Actor) (*models.Alert, *ChangeSet, error) {
	code, err := s.codes.FindByCode(ctx, req.AlertCode)
	if err != nil {
		return nil, nil, models.NewDownstream("alert code catalog", err)
	}
	if code == nil {
		return nil, nil, models.NewNotFound("alert code", req.AlertCode)
	}
	if !code.IsActive() {
		return nil, nil, models.NewInvalidInput("alert code %s is inactive", req.AlertCode)
	}

	activeFrom := models.Today()
	if req.ActiveFrom != nil {
		activeFrom = *req.ActiveFrom
	}
	if req.ActiveTo != nil && req.ActiveTo.Time.Before(activeFrom.Time) {
		return nil, nil, models.NewInvalidInput("active to (%s) must not be before active from (%s)", req.ActiveTo, activeFrom)
	}

	now := time.Now()
	var alert *models.Alert
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, []string{req.PrisonNumber}, func(ctx context.Context) error {
		if err := s.guardDuplicate(ctx, req.PrisonNumber, code.Code); err != nil {
			return err
		}
		alert = models.NewAlert(req.PrisonNumber, *code, req.Description, req.AuthorisedBy, activeFrom, req.ActiveTo)
		alert.Create(actor.Username, actor.DisplayName, now, models.SourceDPS, "")
		if err := s.alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("failed to save alert: %w", err)
		}
		changes.Register(req.PrisonNumber)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("Created alert %s with code %s for %s", alert.AlertUUID, code.Code, req.PrisonNumber)
	return alert, changes, nil
}

// Migrate imports one alert from the external system, preserving its
// original creation provenance and stamping the migration time. The
// already-exists guard applies: migration is not a reconciler context.
func (s *AlertService) Migrate(ctx context.Context, req *models.MigrateAlertRequest) (*models.Alert, *ChangeSet, error) {
	code, err := s.codes.FindByCode(ctx, req.AlertCode)
	if err != nil {
		return nil, nil, models.NewDownstream("alert code catalog", err)
	}
	if code == nil {
		return nil, nil, models.NewNotFound("alert code", req.AlertCode)
	}

	now := time.Now()
	var alert *models.Alert
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, []string{req.PrisonNumber}, func(ctx context.Context) error {
		if err := s.guardDuplicate(ctx, req.PrisonNumber, code.Code); err != nil {
			return err
		}
		alert = models.NewAlert(req.PrisonNumber, *code, req.Description, req.AuthorisedBy, req.ActiveFrom, req.ActiveTo)
		alert.Create(req.CreatedBy, req.CreatedByDisplayName, req.CreatedAt, models.SourceNOMIS, "Alert migrated from NOMIS")
		alert.MigratedAt = &now
		if err := s.alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("failed to save migrated alert: %w", err)
		}
		changes.Register(req.PrisonNumber)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("Migrated alert %s with code %s for %s", alert.AlertUUID, code.Code, req.PrisonNumber)
	return alert, changes, nil
}

func (s *AlertService) guardDuplicate(ctx context.Context, prisonNumber, code string) error {
	existing, err := s.alerts.FindByPrisonNumberAndCode(ctx, prisonNumber, code)
	if err != nil {
		return fmt.Errorf("failed to load alerts for %s: %w", prisonNumber, err)
	}
	for _, a := range existing {
		if a.IsActive() || a.WillBecomeActive() {
			return models.NewAlreadyExists("active alert with code %s already exists for prison number %s", code, prisonNumber)
		}
	}
	return nil
}

// Update changes an alert's mutable fields, recording one UPDATED audit event
// summarising what changed.
func (s *AlertService) Update(ctx context.Context, alertUUID uuid.UUID, req *models.UpdateAlertRequest, actor models.Actor) (*models.Alert, *ChangeSet, error) {
	alert, err := s.get(ctx, alertUUID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, []string{alert.PrisonNumber}, func(ctx context.Context) error {
		alert, err = s.get(ctx, alertUUID)
		if err != nil {
			return err
		}

		var changed []string
		if req.Description != nil && *req.Description != alert.Description {
			alert.Description = *req.Description
			changed = append(changed, "description updated")
		}
		if req.AuthorisedBy != nil && *req.AuthorisedBy != alert.AuthorisedBy {
			alert.AuthorisedBy = *req.AuthorisedBy
			changed = append(changed, "authorised by updated")
		}
		if req.ActiveFrom != nil && !req.ActiveFrom.Equal(alert.ActiveFrom) {
			changed = append(changed, fmt.Sprintf("active from changed from %s to %s", alert.ActiveFrom, req.ActiveFrom))
			alert.ActiveFrom = *req.ActiveFrom
		}
		if req.ActiveTo != nil && (alert.ActiveTo == nil || !req.ActiveTo.Equal(*alert.ActiveTo)) {
			changed = append(changed, fmt.Sprintf("active to set to %s", req.ActiveTo))
			alert.ActiveTo = req.ActiveTo
		}
		if len(changed) == 0 {
			return nil
		}
		if alert.ActiveTo != nil && alert.ActiveTo.Time.Before(alert.ActiveFrom.Time) {
			return models.NewInvalidInput("active to (%s) must not be before active from (%s)", alert.ActiveTo, alert.ActiveFrom)
		}

		alert.AuditEvent(models.AuditUpdated, strings.Join(changed, "; "), now, actor.Username, actor.DisplayName, models.SourceDPS)
		if err := s.alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("failed to save alert: %w", err)
		}
		changes.Register(alert.PrisonNumber)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return alert, changes, nil
}

// Delete soft-deletes an alert.
func (s *AlertService) Delete(ctx context.Context, alertUUID uuid.UUID, actor models.Actor) (*models.Alert, *ChangeSet, error) {
	alert, err := s.get(ctx, alertUUID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, []string{alert.PrisonNumber}, func(ctx context.Context) error {
		alert, err = s.get(ctx, alertUUID)
		if err != nil {
			return err
		}
		alert.Delete(now, actor.Username, actor.DisplayName, models.SourceDPS, "")
		if err := s.alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("failed to save alert: %w", err)
		}
		changes.Register(alert.PrisonNumber)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("Deleted alert %s for %s", alert.AlertUUID, alert.PrisonNumber)
	return alert, changes, nil
}

// AddComment appends a comment to an alert.
func (s *AlertService) AddComment(ctx context.Context, alertUUID uuid.UUID, text string, actor models.Actor) (*models.Alert, models.Comment, *ChangeSet, error) {
	alert, err := s.get(ctx, alertUUID)
	if err != nil {
		return nil, models.Comment{}, nil, err
	}

	var comment models.Comment
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, []string{alert.PrisonNumber}, func(ctx context.Context) error {
		alert, err = s.get(ctx, alertUUID)
		if err != nil {
			return err
		}
		comment = alert.AddComment(text, time.Now(), actor.Username, actor.DisplayName)
		if err := s.alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("failed to save alert: %w", err)
		}
		changes.Register(alert.PrisonNumber)
		return nil
	})
	if err != nil {
		return nil, models.Comment{}, nil, err
	}
	return alert, comment, changes, nil
}

// Get returns one alert by UUID.
func (s *AlertService) Get(ctx context.Context, alertUUID uuid.UUID) (*models.Alert, error) {
	return s.get(ctx, alertUUID)
}

// ListByPrisonNumber returns a prisoner's current (non-deleted) alerts.
func (s *AlertService) ListByPrisonNumber(ctx context.Context, prisonNumber string) ([]*models.Alert, error) {
	alerts, err := s.alerts.FindByPrisonNumber(ctx, prisonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for %s: %w", prisonNumber, err)
	}
	return alerts, nil
}

func (s *AlertService) get(ctx context.Context, alertUUID uuid.UUID) (*models.Alert, error) {
	alert, err := s.alerts.FindByUUID(ctx, alertUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert %s: %w", alertUUID, err)
	}
	if alert == nil || alert.IsDeleted() {
		return nil, models.NewNotFound("alert", alertUUID.String())
	}
	return alert, nil
}
