package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/models"
)

// BulkService applies one alert code across a list of prisoners in a single
// atomic unit of work. Preconditions (code active, every target resolvable)
// are checked before any mutation; the prisoner-search call is deliberately
// sequenced after the local code validation so a locally invalid request
// never costs a network round trip.
type BulkService struct {
	alerts AlertStore
	codes  CodeStore
	runs   BulkRunStore
	search PrisonerSearch
	logger *logrus.Logger
}

func NewBulkService(alerts AlertStore, codes CodeStore, runs BulkRunStore, search PrisonerSearch, logger *logrus.Logger) *BulkService {
	return &BulkService{alerts: alerts, codes: codes, runs: runs, search: search, logger: logger}
}

// Run executes a bulk request. An audit record of the request and its outcome
// is persisted whether the run succeeds or fails; alert mutations themselves
// are all-or-nothing.
func (s *BulkService) Run(ctx context.Context, req *models.BulkRequest, actor models.Actor) (*models.BulkResult, *ChangeSet, error) {
	run := models.NewBulkRun(*req, actor, time.Now())

	result, changes, err := s.run(ctx, req, actor)
	if err != nil {
		run.Fail(time.Now(), err)
	} else if cerr := run.Complete(result, time.Now()); cerr != nil {
		s.logger.Errorf("Failed to record outcome for bulk run %s: %v", run.ID, cerr)
	}
	if saveErr := s.runs.SaveBulkRun(ctx, run); saveErr != nil {
		s.logger.Errorf("Failed to save bulk run record %s: %v", run.ID, saveErr)
	}
	if err != nil {
		return nil, nil, err
	}
	return result, changes, nil
}

func (s *BulkService) run(ctx context.Context, req *models.BulkRequest, actor models.Actor) (*models.BulkResult, *ChangeSet, error) {
	if req.Mode != models.BulkModeAddMissing && req.Mode != models.BulkModeExpireAndReplace {
		return nil, nil, models.NewInvalidInput("unknown bulk mode %s", req.Mode)
	}
	switch req.CleanupMode {
	case "", models.BulkCleanupKeepAll, models.BulkCleanupExpireUnspecified:
	default:
		return nil, nil, models.NewInvalidInput("unknown cleanup mode %s", req.CleanupMode)
	}

	code, err := s.codes.FindByCode(ctx, req.AlertCode)
	if err != nil {
		return nil, nil, models.NewDownstream("alert code catalog", err)
	}
	if code == nil {
		return nil, nil, models.NewInvalidInput("alert code %s not found", req.AlertCode)
	}
	if !code.IsActive() {
		return nil, nil, models.NewInvalidInput("alert code %s is inactive", req.AlertCode)
	}

	targets := dedupe(req.PrisonNumbers)
	if len(targets) == 0 {
		return nil, nil, models.NewInvalidInput("at least one prison number must be specified")
	}

	resolved, err := s.search.Resolve(ctx, targets)
	if err != nil {
		return nil, nil, models.NewDownstream("prisoner search", err)
	}
	if missing := difference(targets, resolved); len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, models.NewInvalidInput("prison number(s) %s not found", strings.Join(missing, ", "))
	}

	now := time.Now()
	today := models.Today()
	result := &models.BulkResult{}
	changes := NewChangeSet()

	err = s.alerts.InTransaction(ctx, targets, func(ctx context.Context) error {
		var toSave []*models.Alert

		for _, pn := range targets {
			existing, err := s.alerts.FindByPrisonNumberAndCode(ctx, pn, code.Code)
			if err != nil {
				return fmt.Errorf("failed to load alerts for %s: %w", pn, err)
			}
			var active []*models.Alert
			for _, a := range existing {
				if a.IsActive() {
					active = append(active, a)
				}
			}

			switch {
			case len(active) == 0:
				a := s.newBulkAlert(pn, *code, req.Description, today, now, actor)
				toSave = append(toSave, a)
				changes.Register(pn)
				result.AlertsCreated = append(result.AlertsCreated, models.BulkResultAlert{
					AlertUUID:    a.AlertUUID,
					PrisonNumber: pn,
					Message:      fmt.Sprintf("Alert with code %s created", code.Code),
				})

			case req.Mode == models.BulkModeAddMissing:
				for _, a := range active {
					result.ExistingActiveAlerts = append(result.ExistingActiveAlerts, models.BulkResultAlert{
						AlertUUID:    a.AlertUUID,
						PrisonNumber: pn,
						Message:      fmt.Sprintf("Active alert with code %s already present, no change made", code.Code),
					})
				}

			default:
				for _, a := range active {
					a.Expire(today, actor.Username, actor.DisplayName, now, models.SourceDPS,
						fmt.Sprintf("Expired and replaced by bulk application of alert code %s", code.Code))
					toSave = append(toSave, a)
					result.AlertsUpdated = append(result.AlertsUpdated, models.BulkResultAlert{
						AlertUUID:    a.AlertUUID,
						PrisonNumber: pn,
						Message:      fmt.Sprintf("Alert with code %s expired and replaced", code.Code),
					})
				}
				replacement := s.newBulkAlert(pn, *code, req.Description, today, now, actor)
				toSave = append(toSave, replacement)
				changes.Register(pn)
				result.AlertsCreated = append(result.AlertsCreated, models.BulkResultAlert{
					AlertUUID:    replacement.AlertUUID,
					PrisonNumber: pn,
					Message:      fmt.Sprintf("Alert with code %s created", code.Code),
				})
			}
		}

		if req.CleanupMode == models.BulkCleanupExpireUnspecified {
			expired, err := s.expireUnspecified(ctx, code.Code, targets, today, now, result, changes)
			if err != nil {
				return err
			}
			toSave = append(toSave, expired...)
		}

		if err := s.alerts.SaveAll(ctx, toSave); err != nil {
			return fmt.Errorf("failed to save bulk alerts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("Bulk run for code %s over %d prisoners: %d created, %d updated, %d expired, %d unchanged",
		code.Code, len(targets), len(result.AlertsCreated), len(result.AlertsUpdated),
		len(result.AlertsExpired), len(result.ExistingActiveAlerts))
	return result, changes, nil
}

func (s *BulkService) newBulkAlert(prisonNumber string, code models.AlertCode, description string, today models.Date, now time.Time, actor models.Actor) *models.Alert {
	a := models.NewAlert(prisonNumber, code, description, "", today, nil)
	a.Create(actor.Username, actor.DisplayName, now, models.SourceDPS,
		fmt.Sprintf("Bulk application of alert code %s", code.Code))
	return a
}

// expireUnspecified expires the code's active alerts for every prisoner not
// in the target list. Scoped to the alert code, independent of the per-target
// decision table.
func (s *BulkService) expireUnspecified(ctx context.Context, code string, targets []string, today models.Date, now time.Time, result *models.BulkResult, changes *ChangeSet) ([]*models.Alert, error) {
	targetSet := make(map[string]struct{}, len(targets))
	locked := make(map[string]struct{}, len(targets))
	for _, pn := range targets {
		targetSet[pn] = struct{}{}
		locked[pn] = struct{}{}
	}

	// The transaction only holds locks for the target prisoners, but this
	// cleanup mutates whichever prisoners currently carry the code. Lock
	// their rows too, re-reading until the discovered set is stable so the
	// final read happens under all the locks it needs.
	var active []*models.Alert
	for {
		var err error
		active, err = s.alerts.FindActiveByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to load active alerts with code %s: %w", code, err)
		}
		var unlocked []string
		for _, a := range active {
			if _, ok := locked[a.PrisonNumber]; !ok {
				locked[a.PrisonNumber] = struct{}{}
				unlocked = append(unlocked, a.PrisonNumber)
			}
		}
		if len(unlocked) == 0 {
			break
		}
		if err := s.alerts.Lock(ctx, unlocked); err != nil {
			return nil, fmt.Errorf("failed to lock prisoners for cleanup: %w", err)
		}
	}

	var expired []*models.Alert
	for _, a := range active {
		if _, ok := targetSet[a.PrisonNumber]; ok {
			continue
		}
		a.Expire(today, models.SystemUsername, models.SystemDisplayName, now, models.SourceDPS,
			fmt.Sprintf("Expired as prison number was not specified in bulk application of alert code %s", code))
		expired = append(expired, a)
		changes.Register(a.PrisonNumber)
		result.AlertsExpired = append(result.AlertsExpired, models.BulkResultAlert{
			AlertUUID:    a.AlertUUID,
			PrisonNumber: a.PrisonNumber,
			Message:      fmt.Sprintf("Alert with code %s expired", code),
		})
	}
	return expired, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func difference(want, have []string) []string {
	haveSet := make(map[string]struct{}, len(have))
	for _, s := range have {
		haveSet[s] = struct{}{}
	}
	var missing []string
	for _, s := range want {
		if _, ok := haveSet[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
