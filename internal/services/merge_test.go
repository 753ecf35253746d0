package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisoner-alerts-api/internal/models"
)

var codeXA = models.AlertCode{Code: "XA", TypeCode: "X", Description: "Arsonist"}
var codeVI = models.AlertCode{Code: "VI", TypeCode: "V", Description: "Violent"}

func activeAlert(prisonNumber string, code models.AlertCode) *models.Alert {
	a := models.NewAlert(prisonNumber, code, "", "", models.Today().AddDays(-10), nil)
	a.Create("USER1", "User One", time.Now().Add(-24*time.Hour), models.SourceDPS, "")
	return a
}

func mergeRequest(from, to string, alerts ...models.MergeAlert) *models.MergeRequest {
	return &models.MergeRequest{
		PrisonNumberMergeFrom: from,
		PrisonNumberMergeTo:   to,
		NewAlerts:             alerts,
	}
}

func TestMergeDeletesSourceAndMintsDestination(t *testing.T) {
	source := []*models.Alert{
		activeAlert("A1111AA", codeXA),
		activeAlert("A1111AA", codeVI),
		activeAlert("A1111AA", codeXA),
	}
	store := newFakeAlertStore(source...)
	codes := newFakeCodeStore(codeXA, codeVI)
	svc := NewMergeService(store, codes, testLogger())

	req := mergeRequest("A1111AA", "B2222BB",
		models.MergeAlert{OffenderBookID: 1234, AlertSequence: 1, AlertCode: "XA", ActiveFrom: models.Today()},
		models.MergeAlert{OffenderBookID: 1234, AlertSequence: 2, AlertCode: "VI", ActiveFrom: models.Today()},
	)
	result, changes, err := svc.Merge(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, result.AlertsDeleted, 3)
	assert.Len(t, result.AlertsCreated, 2)
	for _, a := range source {
		assert.True(t, a.IsDeleted())
	}

	destination, err := store.FindByPrisonNumber(context.Background(), "B2222BB")
	require.NoError(t, err)
	assert.Len(t, destination, 2)
	for _, a := range destination {
		assert.Equal(t, "B2222BB", a.PrisonNumber)
		created := a.CreatedAuditEvent()
		require.NotNil(t, created)
		assert.Equal(t, models.SystemUsername, created.ActionedBy)
		assert.Equal(t, models.SourceNOMIS, created.Source)
	}

	assert.Equal(t, []string{"A1111AA", "B2222BB"}, changes.PrisonNumbers())
}

func TestMergeMapsIncomingAlertsToNewUUIDs(t *testing.T) {
	store := newFakeAlertStore()
	codes := newFakeCodeStore(codeXA)
	svc := NewMergeService(store, codes, testLogger())

	req := mergeRequest("A1111AA", "B2222BB",
		models.MergeAlert{OffenderBookID: 99, AlertSequence: 7, AlertCode: "XA", ActiveFrom: models.Today()},
	)
	result, _, err := svc.Merge(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.AlertsCreated, 1)
	created := result.AlertsCreated[0]
	assert.Equal(t, int64(99), created.OffenderBookID)
	assert.Equal(t, 7, created.AlertSequence)

	stored, err := store.FindByUUID(context.Background(), created.AlertUUID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "B2222BB", stored.PrisonNumber)
}

func TestMergeRejectsUnknownCodesBeforeMutating(t *testing.T) {
	existing := activeAlert("A1111AA", codeXA)
	store := newFakeAlertStore(existing)
	codes := newFakeCodeStore(codeXA)
	svc := NewMergeService(store, codes, testLogger())

	req := mergeRequest("A1111AA", "B2222BB",
		models.MergeAlert{OffenderBookID: 1, AlertSequence: 1, AlertCode: "ZZ", ActiveFrom: models.Today()},
		models.MergeAlert{OffenderBookID: 1, AlertSequence: 2, AlertCode: "AA", ActiveFrom: models.Today()},
	)
	_, _, err := svc.Merge(context.Background(), req)

	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "alert code(s) AA, ZZ not found", err.Error())
	assert.False(t, existing.IsDeleted())
}
