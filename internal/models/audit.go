package models

import "time"

// AuditAction identifies what happened to an alert.
type AuditAction string

const (
	AuditCreated AuditAction = "CREATED"
	AuditUpdated AuditAction = "UPDATED"
	AuditDeleted AuditAction = "DELETED"
)

// Source identifies the system a change originated from.
type Source string

const (
	SourceNOMIS Source = "NOMIS"
	SourceDPS   Source = "DPS"
)

// System actor used for attributing merge and resync mutations.
const (
	SystemUsername    = "SYS"
	SystemDisplayName = "System"
)

// AuditEvent is one immutable entry in an alert's audit trail.
type AuditEvent struct {
	ID                    int64       `json:"-"`
	Action                AuditAction `json:"action"`
	Description           string      `json:"description"`
	ActionedAt            time.Time   `json:"actionedAt"`
	ActionedBy            string      `json:"actionedBy"`
	ActionedByDisplayName string      `json:"actionedByDisplayName"`
	Source                Source      `json:"source"`
}
