package services

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/models"
)

// resolveCodes looks up every distinct code and fails fast when any is
// missing, naming all of them in one sorted, comma-joined message.
func resolveCodes(ctx context.Context, store CodeStore, codes []string) (map[string]models.AlertCode, error) {
	distinct := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		distinct = append(distinct, code)
	}

	found, err := store.FindByCodes(ctx, distinct)
	if err != nil {
		return nil, models.NewDownstream("alert code catalog", err)
	}

	byCode := make(map[string]models.AlertCode, len(found))
	for _, c := range found {
		byCode[c.Code] = c
	}

	var missing []string
	for _, code := range distinct {
		if _, ok := byCode[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, models.NewInvalidInput("alert code(s) %s not found", strings.Join(missing, ", "))
	}
	return byCode, nil
}

// warnIfRangeInverted flags a descriptor whose active to precedes its active
// from. Source data from the legacy system is not fully trustworthy; the
// anomaly is surfaced for human review, never rejected.
func warnIfRangeInverted(logger *logrus.Logger, prisonNumber, code string, activeFrom models.Date, activeTo *models.Date) {
	if activeTo != nil && activeTo.Time.Before(activeFrom.Time) {
		logger.Warnf("Alert for %s with code %s has active to (%s) before active from (%s)",
			prisonNumber, code, activeTo, activeFrom)
	}
}

// warnDuplicateActives flags prison-number/alert-code groups holding more
// than one alert that is active or will become active.
func warnDuplicateActives(logger *logrus.Logger, prisonNumber string, alerts []*models.Alert) {
	counts := make(map[string]int)
	for _, a := range alerts {
		if a.IsActive() || a.WillBecomeActive() {
			counts[a.Code.Code]++
		}
	}
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if counts[code] > 1 {
			logger.Warnf("Prisoner %s has %d active or pending alerts with code %s", prisonNumber, counts[code], code)
		}
	}
}
