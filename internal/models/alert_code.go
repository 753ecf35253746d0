package models

import "time"

// AlertType is the top level of the two-level reference-data taxonomy.
type AlertType struct {
	Code          string      `json:"code"`
	Description   string      `json:"description"`
	DeactivatedAt *time.Time  `json:"deactivatedAt,omitempty"`
	Codes         []AlertCode `json:"alertCodes,omitempty"`
}

// AlertCode categorises alerts. Each code belongs to exactly one type.
// Deactivation is time-bounded: a future DeactivatedAt schedules deactivation
// while leaving the code usable until then.
type AlertCode struct {
	Code          string     `json:"code"`
	TypeCode      string     `json:"alertTypeCode"`
	Description   string     `json:"description"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

func (t AlertType) IsActive() bool {
	return t.DeactivatedAt == nil || t.DeactivatedAt.After(time.Now())
}

func (c AlertCode) IsActive() bool {
	return c.DeactivatedAt == nil || c.DeactivatedAt.After(time.Now())
}
