package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisoner-alerts-api/internal/models"
)

var testActor = models.Actor{Username: "TEST_USER", DisplayName: "Test User"}

func newAlertService(store *fakeAlertStore, codes *fakeCodeStore) *AlertService {
	return NewAlertService(store, codes, testLogger())
}

func TestCreateDefaultsActiveFromToToday(t *testing.T) {
	store := newFakeAlertStore()
	svc := newAlertService(store, newFakeCodeStore(codeXA))

	alert, changes, err := svc.Create(context.Background(),
		&models.CreateAlertRequest{PrisonNumber: "A1111AA", AlertCode: "XA"}, testActor)
	require.NoError(t, err)

	assert.True(t, alert.ActiveFrom.Equal(models.Today()))
	assert.True(t, alert.IsActive())
	assert.Equal(t, []string{"A1111AA"}, changes.PrisonNumbers())

	created := alert.CreatedAuditEvent()
	require.NotNil(t, created)
	assert.Equal(t, "TEST_USER", created.ActionedBy)
	assert.Equal(t, models.SourceDPS, created.Source)
}

func TestCreateRejectsUnknownCode(t *testing.T) {
	svc := newAlertService(newFakeAlertStore(), newFakeCodeStore())

	_, _, err := svc.Create(context.Background(),
		&models.CreateAlertRequest{PrisonNumber: "A1111AA", AlertCode: "ZZ"}, testActor)

	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCreateRejectsInactiveCode(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	inactive := models.AlertCode{Code: "XA", TypeCode: "X", Description: "Arsonist", DeactivatedAt: &past}
	svc := newAlertService(newFakeAlertStore(), newFakeCodeStore(inactive))

	_, _, err := svc.Create(context.Background(),
		&models.CreateAlertRequest{PrisonNumber: "A1111AA", AlertCode: "XA"}, testActor)

	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc := newAlertService(newFakeAlertStore(), newFakeCodeStore(codeXA))

	from := models.Today()
	to := models.Today().AddDays(-1)
	_, _, err := svc.Create(context.Background(), &models.CreateAlertRequest{
		PrisonNumber: "A1111AA",
		AlertCode:    "XA",
		ActiveFrom:   &from,
		ActiveTo:     &to,
	}, testActor)

	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestCreateRejectsDuplicateActiveAlert(t *testing.T) {
	existing := activeAlert("A1111AA", codeXA)
	svc := newAlertService(newFakeAlertStore(existing), newFakeCodeStore(codeXA))

	_, _, err := svc.Create(context.Background(),
		&models.CreateAlertRequest{PrisonNumber: "A1111AA", AlertCode: "XA"}, testActor)

	var exists *models.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "active alert with code XA already exists for prison number A1111AA", err.Error())
}

func TestCreateAllowedWhenExistingAlertExpired(t *testing.T) {
	expired := models.NewAlert("A1111AA", codeXA, "", "", models.Today().AddDays(-20), nil)
	expired.Create("USER1", "User One", time.Now().Add(-20*24*time.Hour), models.SourceDPS, "")
	expired.Expire(models.Today(), "USER1", "User One", time.Now().Add(-time.Hour), models.SourceDPS, "")
	svc := newAlertService(newFakeAlertStore(expired), newFakeCodeStore(codeXA))

	_, _, err := svc.Create(context.Background(),
		&models.CreateAlertRequest{PrisonNumber: "A1111AA", AlertCode: "XA"}, testActor)
	require.NoError(t, err)
}

func TestMigratePreservesProvenance(t *testing.T) {
	store := newFakeAlertStore()
	svc := newAlertService(store, newFakeCodeStore(codeXA))

	createdAt := time.Now().Add(-365 * 24 * time.Hour)
	alert, _, err := svc.Migrate(context.Background(), &models.MigrateAlertRequest{
		PrisonNumber:         "A1111AA",
		AlertCode:            "XA",
		ActiveFrom:           models.Today().AddDays(-365),
		CreatedAt:            createdAt,
		CreatedBy:            "OLD_USER",
		CreatedByDisplayName: "Old User",
	})
	require.NoError(t, err)

	require.NotNil(t, alert.MigratedAt)
	created := alert.CreatedAuditEvent()
	require.NotNil(t, created)
	assert.Equal(t, "OLD_USER", created.ActionedBy)
	assert.True(t, created.ActionedAt.Equal(createdAt))
	assert.Equal(t, models.SourceNOMIS, created.Source)
}

func TestUpdateRecordsSingleAuditEvent(t *testing.T) {
	alert := activeAlert("A1111AA", codeXA)
	store := newFakeAlertStore(alert)
	svc := newAlertService(store, newFakeCodeStore(codeXA))

	description := "now authorised"
	to := models.Today().AddDays(10)
	updated, changes, err := svc.Update(context.Background(), alert.AlertUUID, &models.UpdateAlertRequest{
		Description: &description,
		ActiveTo:    &to,
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, "now authorised", updated.Description)
	require.NotNil(t, updated.ActiveTo)
	assert.True(t, updated.ActiveTo.Equal(to))
	assert.Equal(t, 1, changes.Len())

	modified := updated.LastModifiedAuditEvent()
	require.NotNil(t, modified)
	assert.Equal(t, models.AuditUpdated, modified.Action)
	assert.Contains(t, modified.Description, "description updated")
	assert.Contains(t, modified.Description, "active to set to")
}

func TestUpdateNoChangesAddsNoAudit(t *testing.T) {
	alert := activeAlert("A1111AA", codeXA)
	svc := newAlertService(newFakeAlertStore(alert), newFakeCodeStore(codeXA))

	updated, _, err := svc.Update(context.Background(), alert.AlertUUID, &models.UpdateAlertRequest{}, testActor)
	require.NoError(t, err)
	assert.Nil(t, updated.LastModifiedAuditEvent())
}

func TestDeleteHidesAlertFromReads(t *testing.T) {
	alert := activeAlert("A1111AA", codeXA)
	store := newFakeAlertStore(alert)
	svc := newAlertService(store, newFakeCodeStore(codeXA))

	_, _, err := svc.Delete(context.Background(), alert.AlertUUID, testActor)
	require.NoError(t, err)
	assert.True(t, alert.IsDeleted())

	_, err = svc.Get(context.Background(), alert.AlertUUID)
	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)

	current, err := svc.ListByPrisonNumber(context.Background(), "A1111AA")
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestAddComment(t *testing.T) {
	alert := activeAlert("A1111AA", codeXA)
	svc := newAlertService(newFakeAlertStore(alert), newFakeCodeStore(codeXA))

	_, comment, changes, err := svc.AddComment(context.Background(), alert.AlertUUID, "keep an eye", testActor)
	require.NoError(t, err)

	assert.Equal(t, "keep an eye", comment.Text)
	assert.Equal(t, "TEST_USER", comment.CreatedBy)
	assert.Equal(t, 1, changes.Len())
	require.Len(t, alert.Comments, 1)
}
