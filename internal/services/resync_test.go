package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisoner-alerts-api/internal/models"
)

func resyncDescriptor(seq int, code string) models.ResyncAlert {
	return models.ResyncAlert{
		OffenderBookID:       1234,
		AlertSequence:        seq,
		AlertCode:            code,
		ActiveFrom:           models.Today().AddDays(-30),
		CreatedAt:            time.Now().Add(-30 * 24 * time.Hour),
		CreatedBy:            "NOMIS_USER",
		CreatedByDisplayName: "Nomis User",
	}
}

func TestResyncReplacesExistingAlerts(t *testing.T) {
	oldOne := activeAlert("A1111AA", codeXA)
	oldTwo := activeAlert("A1111AA", codeVI)
	store := newFakeAlertStore(oldOne, oldTwo)
	svc := NewResyncService(store, newFakeCodeStore(codeXA, codeVI), testLogger())

	resynced, changes, err := svc.Resync(context.Background(), "A1111AA",
		[]models.ResyncAlert{resyncDescriptor(1, "XA")})
	require.NoError(t, err)

	assert.True(t, oldOne.IsDeleted())
	assert.True(t, oldTwo.IsDeleted())
	require.Len(t, resynced, 1)
	assert.Equal(t, []string{"A1111AA"}, changes.PrisonNumbers())

	current, err := store.FindByPrisonNumber(context.Background(), "A1111AA")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, resynced[0].AlertUUID, current[0].AlertUUID)
	assert.Equal(t, "XA", current[0].Code.Code)
}

func TestResyncIsIdempotentOnActiveCount(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewResyncService(store, newFakeCodeStore(codeXA), testLogger())
	incoming := []models.ResyncAlert{resyncDescriptor(1, "XA")}

	for i := 0; i < 3; i++ {
		_, _, err := svc.Resync(context.Background(), "A1111AA", incoming)
		require.NoError(t, err)
	}

	current, err := store.FindByPrisonNumber(context.Background(), "A1111AA")
	require.NoError(t, err)
	assert.Len(t, current, 1)
}

func TestResyncPreservesProvenance(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewResyncService(store, newFakeCodeStore(codeXA), testLogger())

	in := resyncDescriptor(1, "XA")
	modifiedAt := time.Now().Add(-24 * time.Hour)
	in.LastModifiedAt = &modifiedAt
	in.LastModifiedBy = "EDITOR"
	in.LastModifiedByDisplayName = "The Editor"
	in.Comments = []models.ResyncComment{{
		Text:                 "watch this one",
		CreatedAt:            modifiedAt,
		CreatedBy:            "EDITOR",
		CreatedByDisplayName: "The Editor",
	}}

	resynced, _, err := svc.Resync(context.Background(), "A1111AA", []models.ResyncAlert{in})
	require.NoError(t, err)
	require.Len(t, resynced, 1)

	alert, err := store.FindByUUID(context.Background(), resynced[0].AlertUUID)
	require.NoError(t, err)
	require.NotNil(t, alert)

	created := alert.CreatedAuditEvent()
	require.NotNil(t, created)
	assert.Equal(t, "NOMIS_USER", created.ActionedBy)
	assert.True(t, created.ActionedAt.Equal(in.CreatedAt))

	modified := alert.LastModifiedAuditEvent()
	require.NotNil(t, modified)
	assert.Equal(t, "EDITOR", modified.ActionedBy)
	assert.True(t, modified.ActionedAt.Equal(modifiedAt))

	require.Len(t, alert.Comments, 1)
	assert.Equal(t, "watch this one", alert.Comments[0].Text)
}

func TestResyncRejectsUnknownCodesBeforeMutating(t *testing.T) {
	existing := activeAlert("A1111AA", codeXA)
	store := newFakeAlertStore(existing)
	svc := NewResyncService(store, newFakeCodeStore(codeXA), testLogger())

	_, _, err := svc.Resync(context.Background(), "A1111AA", []models.ResyncAlert{
		resyncDescriptor(1, "XA"),
		resyncDescriptor(2, "ZZ"),
	})

	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "alert code(s) ZZ not found", err.Error())
	assert.False(t, existing.IsDeleted())
}
