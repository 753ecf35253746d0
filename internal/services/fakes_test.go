package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/models"
)

type fakeAlertStore struct {
	byUUID  map[uuid.UUID]*models.Alert
	locked  []string
	saveErr error
}

func newFakeAlertStore(alerts ...*models.Alert) *fakeAlertStore {
	s := &fakeAlertStore{byUUID: make(map[uuid.UUID]*models.Alert)}
	for _, a := range alerts {
		s.byUUID[a.AlertUUID] = a
	}
	return s
}

func (s *fakeAlertStore) FindByPrisonNumber(_ context.Context, prisonNumber string) ([]*models.Alert, error) {
	var out []*models.Alert
	for _, a := range s.byUUID {
		if a.PrisonNumber == prisonNumber && !a.IsDeleted() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) FindByPrisonNumberAndCode(_ context.Context, prisonNumber, code string) ([]*models.Alert, error) {
	var out []*models.Alert
	for _, a := range s.byUUID {
		if a.PrisonNumber == prisonNumber && a.Code.Code == code && !a.IsDeleted() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) FindActiveByCode(_ context.Context, code string) ([]*models.Alert, error) {
	var out []*models.Alert
	for _, a := range s.byUUID {
		if a.Code.Code == code && !a.IsDeleted() && a.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) FindByUUID(_ context.Context, alertUUID uuid.UUID) (*models.Alert, error) {
	return s.byUUID[alertUUID], nil
}

func (s *fakeAlertStore) Save(_ context.Context, a *models.Alert) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.byUUID[a.AlertUUID] = a
	return nil
}

func (s *fakeAlertStore) SaveAll(ctx context.Context, alerts []*models.Alert) error {
	for _, a := range alerts {
		if err := s.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeAlertStore) InTransaction(ctx context.Context, prisonNumbers []string, fn func(ctx context.Context) error) error {
	s.locked = append(s.locked, prisonNumbers...)
	return fn(ctx)
}

func (s *fakeAlertStore) Lock(_ context.Context, prisonNumbers []string) error {
	s.locked = append(s.locked, prisonNumbers...)
	return nil
}

type fakeCodeStore struct {
	codes map[string]models.AlertCode
	err   error
}

func newFakeCodeStore(codes ...models.AlertCode) *fakeCodeStore {
	s := &fakeCodeStore{codes: make(map[string]models.AlertCode)}
	for _, c := range codes {
		s.codes[c.Code] = c
	}
	return s
}

func (s *fakeCodeStore) FindByCode(_ context.Context, code string) (*models.AlertCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.codes[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *fakeCodeStore) FindByCodes(_ context.Context, codes []string) ([]models.AlertCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	var found []models.AlertCode
	for _, code := range codes {
		if c, ok := s.codes[code]; ok {
			found = append(found, c)
		}
	}
	return found, nil
}

type fakeBulkRunStore struct {
	runs []*models.BulkRun
}

func (s *fakeBulkRunStore) SaveBulkRun(_ context.Context, run *models.BulkRun) error {
	s.runs = append(s.runs, run)
	return nil
}

type fakeSearch struct {
	known map[string]bool
	err   error
}

func newFakeSearch(known ...string) *fakeSearch {
	s := &fakeSearch{known: make(map[string]bool)}
	for _, pn := range known {
		s.known[pn] = true
	}
	return s
}

func (s *fakeSearch) Resolve(_ context.Context, prisonNumbers []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var found []string
	for _, pn := range prisonNumbers {
		if s.known[pn] {
			found = append(found, pn)
		}
	}
	return found, nil
}

var errBoom = errors.New("boom")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
