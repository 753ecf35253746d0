package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Alert is a flag attached to one prisoner for a validity date range. All
// state changes go through its methods so that every mutation leaves an audit
// event behind. The UUID is stable for the alert's whole life and is never
// re-parented onto another prison number.
type Alert struct {
	ID           int64      `json:"-"`
	AlertUUID    uuid.UUID  `json:"alertUuid"`
	PrisonNumber string     `json:"prisonNumber"`
	Code         AlertCode  `json:"alertCode"`
	Description  string     `json:"description,omitempty"`
	AuthorisedBy string     `json:"authorisedBy,omitempty"`
	ActiveFrom   Date       `json:"activeFrom"`
	ActiveTo     *Date      `json:"activeTo,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	MigratedAt   *time.Time `json:"migratedAt,omitempty"`

	Audit    []AuditEvent `json:"-"`
	Comments []Comment    `json:"-"`
}

// NewAlert constructs an alert aggregate in uncommitted state. Callers follow
// up with Create to record who made it.
func NewAlert(prisonNumber string, code AlertCode, description, authorisedBy string, activeFrom Date, activeTo *Date) *Alert {
	return &Alert{
		AlertUUID:    uuid.New(),
		PrisonNumber: prisonNumber,
		Code:         code,
		Description:  description,
		AuthorisedBy: authorisedBy,
		ActiveFrom:   activeFrom,
		ActiveTo:     activeTo,
	}
}

// IsActive reports whether the alert is in force today. ActiveTo is
// exclusive: an alert expiring today is no longer active. Evaluated against
// the clock on every call because duplicate detection and bulk eligibility
// depend on the current date.
func (a *Alert) IsActive() bool {
	return a.isActiveOn(Today())
}

// WillBecomeActive reports whether the alert's range starts in the future.
func (a *Alert) WillBecomeActive() bool {
	return a.ActiveFrom.Time.After(Today().Time)
}

func (a *Alert) isActiveOn(day Date) bool {
	if a.ActiveFrom.Time.After(day.Time) {
		return false
	}
	return a.ActiveTo == nil || a.ActiveTo.Time.After(day.Time)
}

// Status is the date-derived display state.
func (a *Alert) Status() string {
	switch {
	case a.IsActive():
		return "ACTIVE"
	case a.WillBecomeActive():
		return "PENDING"
	default:
		return "INACTIVE"
	}
}

// Create records the CREATED audit event and stamps the creation time.
func (a *Alert) Create(actionedBy, actionedByDisplayName string, actionedAt time.Time, source Source, description string) *Alert {
	if description == "" {
		description = "Alert created"
	}
	a.CreatedAt = actionedAt
	a.appendAudit(AuditCreated, description, actionedAt, actionedBy, actionedByDisplayName, source)
	return a
}

// AuditEvent appends an audit entry. Append only; temporal ordering of the
// trail is resolved at read time.
func (a *Alert) AuditEvent(action AuditAction, description string, actionedAt time.Time, actionedBy, actionedByDisplayName string, source Source) {
	a.appendAudit(action, description, actionedAt, actionedBy, actionedByDisplayName, source)
}

func (a *Alert) appendAudit(action AuditAction, description string, actionedAt time.Time, actionedBy, actionedByDisplayName string, source Source) {
	a.Audit = append(a.Audit, AuditEvent{
		Action:                action,
		Description:           description,
		ActionedAt:            actionedAt,
		ActionedBy:            actionedBy,
		ActionedByDisplayName: actionedByDisplayName,
		Source:                source,
	})
}

// AddComment appends a comment and returns it.
func (a *Alert) AddComment(text string, createdAt time.Time, createdBy, createdByDisplayName string) Comment {
	c := Comment{
		CommentUUID:          uuid.New(),
		Text:                 text,
		CreatedAt:            createdAt,
		CreatedBy:            createdBy,
		CreatedByDisplayName: createdByDisplayName,
	}
	a.Comments = append(a.Comments, c)
	return c
}

// Delete marks the alert logically removed. The row stays for history but is
// excluded from all current-state queries.
func (a *Alert) Delete(deletedAt time.Time, deletedBy, deletedByDisplayName string, source Source, description string) {
	if description == "" {
		description = "Alert deleted"
	}
	a.appendAudit(AuditDeleted, description, deletedAt, deletedBy, deletedByDisplayName, source)
}

// DeletedAt returns the timestamp of the most recent DELETED event, or nil if
// the alert has never been deleted.
func (a *Alert) DeletedAt() *time.Time {
	var latest *time.Time
	for i := range a.Audit {
		ev := &a.Audit[i]
		if ev.Action != AuditDeleted {
			continue
		}
		if latest == nil || ev.ActionedAt.After(*latest) {
			t := ev.ActionedAt
			latest = &t
		}
	}
	return latest
}

// IsDeleted reports whether a DELETED audit event exists.
func (a *Alert) IsDeleted() bool {
	return a.DeletedAt() != nil
}

// Expire closes the validity range today and records the change as UPDATED.
func (a *Alert) Expire(today Date, actionedBy, actionedByDisplayName string, actionedAt time.Time, source Source, description string) {
	a.ActiveTo = &today
	if description == "" {
		description = fmt.Sprintf("Expired alert, active to set to %s", today)
	}
	a.appendAudit(AuditUpdated, description, actionedAt, actionedBy, actionedByDisplayName, source)
}

// Resync rewrites audit-trail actor attribution for an alert recreated from a
// resync import. The original system of record knows who created and last
// modified the alert; creation inside the reconciler attributed both to the
// system actor. Timestamps are left untouched.
func (a *Alert) Resync(createdBy, createdByDisplayName, lastModifiedBy, lastModifiedByDisplayName string) {
	if created := a.CreatedAuditEvent(); created != nil && createdBy != "" {
		created.ActionedBy = createdBy
		created.ActionedByDisplayName = createdByDisplayName
	}
	if modified := a.LastModifiedAuditEvent(); modified != nil && lastModifiedBy != "" {
		modified.ActionedBy = lastModifiedBy
		modified.ActionedByDisplayName = lastModifiedByDisplayName
	}
}

// CreatedAuditEvent returns the earliest CREATED event. Exactly one exists
// for any committed alert.
func (a *Alert) CreatedAuditEvent() *AuditEvent {
	var earliest *AuditEvent
	for i := range a.Audit {
		ev := &a.Audit[i]
		if ev.Action != AuditCreated {
			continue
		}
		if earliest == nil || ev.ActionedAt.Before(earliest.ActionedAt) {
			earliest = ev
		}
	}
	return earliest
}

// LastModifiedAuditEvent returns the most recent non-CREATED event, or nil if
// the alert has never been modified.
func (a *Alert) LastModifiedAuditEvent() *AuditEvent {
	var latest *AuditEvent
	for i := range a.Audit {
		ev := &a.Audit[i]
		if ev.Action == AuditCreated {
			continue
		}
		if latest == nil || ev.ActionedAt.After(latest.ActionedAt) {
			latest = ev
		}
	}
	return latest
}

// AuditTrail returns the audit events newest first for display.
func (a *Alert) AuditTrail() []AuditEvent {
	trail := make([]AuditEvent, len(a.Audit))
	copy(trail, a.Audit)
	sort.SliceStable(trail, func(i, j int) bool {
		return trail[i].ActionedAt.After(trail[j].ActionedAt)
	})
	return trail
}

// CommentsNewestFirst returns the comments newest first for display.
func (a *Alert) CommentsNewestFirst() []Comment {
	comments := make([]Comment, len(a.Comments))
	copy(comments, a.Comments)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments
}
