package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MergedAlert maps an incoming merge descriptor to the alert minted for it.
type MergedAlert struct {
	OffenderBookID int64     `json:"offenderBookId"`
	AlertSequence  int       `json:"alertSeq"`
	AlertUUID      uuid.UUID `json:"alertUuid"`
}

// MergeResult is the complete, order-independent accounting of a merge. No
// update category exists: every destination alert is either minted by the
// merge or untouched pre-existing data.
type MergeResult struct {
	PrisonNumberMergeFrom string        `json:"prisonNumberMergeFrom"`
	PrisonNumberMergeTo   string        `json:"prisonNumberMergeTo"`
	AlertsDeleted         []uuid.UUID   `json:"alertsDeleted"`
	AlertsCreated         []MergedAlert `json:"alertsCreated"`
}

// BulkResultAlert describes what happened to one alert during a bulk run.
type BulkResultAlert struct {
	AlertUUID    uuid.UUID `json:"alertUuid"`
	PrisonNumber string    `json:"prisonNumber"`
	Message      string    `json:"message"`
}

// BulkResult partitions a bulk run's outcome into four disjoint collections.
type BulkResult struct {
	ExistingActiveAlerts []BulkResultAlert `json:"existingActiveAlerts"`
	AlertsCreated        []BulkResultAlert `json:"alertsCreated"`
	AlertsUpdated        []BulkResultAlert `json:"alertsUpdated"`
	AlertsExpired        []BulkResultAlert `json:"alertsExpired"`
}

// ResyncedAlert maps an incoming resync descriptor to its replacement alert.
type ResyncedAlert struct {
	OffenderBookID int64     `json:"offenderBookId"`
	AlertSequence  int       `json:"alertSeq"`
	AlertUUID      uuid.UUID `json:"alertUuid"`
}

// BulkRun is the persisted audit record of a bulk request, written on success
// and failure alike. The outcome snapshot is immutable once the run
// completes; it exists only for post-hoc inspection and event replay.
type BulkRun struct {
	ID            uuid.UUID       `json:"id"`
	RequestedAt   time.Time       `json:"requestedAt"`
	RequestedBy   string          `json:"requestedBy"`
	AlertCode     string          `json:"alertCode"`
	Mode          BulkMode        `json:"mode"`
	CleanupMode   BulkCleanupMode `json:"cleanupMode"`
	PrisonNumbers []string        `json:"prisonNumbers"`
	CompletedAt   time.Time       `json:"completedAt"`
	Successful    bool            `json:"successful"`
	Errors        []string        `json:"errors,omitempty"`
	Outcome       json.RawMessage `json:"outcome,omitempty"`
}

// NewBulkRun opens the audit record for a bulk request.
func NewBulkRun(req BulkRequest, actor Actor, at time.Time) *BulkRun {
	return &BulkRun{
		ID:            uuid.New(),
		RequestedAt:   at,
		RequestedBy:   actor.Username,
		AlertCode:     req.AlertCode,
		Mode:          req.Mode,
		CleanupMode:   req.CleanupMode,
		PrisonNumbers: req.PrisonNumbers,
	}
}

// Complete marks the run successful with its outcome snapshot. The run is
// still marked successful when the snapshot cannot be serialized; the error
// is returned so the caller can record the gap.
func (r *BulkRun) Complete(result *BulkResult, at time.Time) error {
	r.CompletedAt = at
	r.Successful = true
	if result == nil {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal bulk run outcome: %w", err)
	}
	r.Outcome = b
	return nil
}

// Fail marks the run unsuccessful, capturing the error messages.
func (r *BulkRun) Fail(at time.Time, errs ...error) {
	r.CompletedAt = at
	r.Successful = false
	for _, err := range errs {
		if err != nil {
			r.Errors = append(r.Errors, err.Error())
		}
	}
}

// AlertResponse is the API view of an alert, with audit trail and comments
// ordered newest first.
type AlertResponse struct {
	Alert
	Status     string       `json:"status"`
	AuditTrail []AuditEvent `json:"auditTrail"`
	Comments   []Comment    `json:"comments"`
}

func NewAlertResponse(a *Alert) AlertResponse {
	return AlertResponse{
		Alert:      *a,
		Status:     a.Status(),
		AuditTrail: a.AuditTrail(),
		Comments:   a.CommentsNewestFirst(),
	}
}
