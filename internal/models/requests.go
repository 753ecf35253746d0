package models

import "time"

// Actor is the authenticated caller identity extracted by the API layer.
type Actor struct {
	Username    string
	DisplayName string
}

// CreateAlertRequest creates a single alert through the API.
type CreateAlertRequest struct {
	PrisonNumber string `json:"prisonNumber" binding:"required"`
	AlertCode    string `json:"alertCode" binding:"required"`
	Description  string `json:"description,omitempty"`
	AuthorisedBy string `json:"authorisedBy,omitempty"`
	ActiveFrom   *Date  `json:"activeFrom,omitempty"`
	ActiveTo     *Date  `json:"activeTo,omitempty"`
}

// UpdateAlertRequest changes an alert's mutable fields. Nil means unchanged.
type UpdateAlertRequest struct {
	Description  *string `json:"description,omitempty"`
	AuthorisedBy *string `json:"authorisedBy,omitempty"`
	ActiveFrom   *Date   `json:"activeFrom,omitempty"`
	ActiveTo     *Date   `json:"activeTo,omitempty"`
}

// AddCommentRequest appends a comment to an alert.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// MigrateAlertRequest imports a single alert from the external system,
// preserving its original provenance and marking it as migrated.
type MigrateAlertRequest struct {
	PrisonNumber         string    `json:"prisonNumber" binding:"required"`
	AlertCode            string    `json:"alertCode" binding:"required"`
	Description          string    `json:"description,omitempty"`
	AuthorisedBy         string    `json:"authorisedBy,omitempty"`
	ActiveFrom           Date      `json:"activeFrom" binding:"required"`
	ActiveTo             *Date     `json:"activeTo,omitempty"`
	CreatedAt            time.Time `json:"createdAt" binding:"required"`
	CreatedBy            string    `json:"createdBy" binding:"required"`
	CreatedByDisplayName string    `json:"createdByDisplayName" binding:"required"`
}

// MergeAlert describes one alert the destination prisoner should end up with
// after a merge. The offender book id and sequence key it back to the
// upstream record.
type MergeAlert struct {
	OffenderBookID int64  `json:"offenderBookId" binding:"required"`
	AlertSequence  int    `json:"alertSeq" binding:"required"`
	AlertCode      string `json:"alertCode" binding:"required"`
	Description    string `json:"description,omitempty"`
	AuthorisedBy   string `json:"authorisedBy,omitempty"`
	ActiveFrom     Date   `json:"activeFrom" binding:"required"`
	ActiveTo       *Date  `json:"activeTo,omitempty"`
}

// MergeRequest combines two prisoners' alert records after their identities
// were unified upstream.
type MergeRequest struct {
	PrisonNumberMergeFrom string       `json:"prisonNumberMergeFrom" binding:"required"`
	PrisonNumberMergeTo   string       `json:"prisonNumberMergeTo" binding:"required"`
	NewAlerts             []MergeAlert `json:"newAlerts"`
}

// BulkMode selects how an existing active alert is reconciled.
type BulkMode string

const (
	BulkModeAddMissing       BulkMode = "ADD_MISSING"
	BulkModeExpireAndReplace BulkMode = "EXPIRE_AND_REPLACE"
)

// BulkCleanupMode optionally expires the code's active alerts held by
// prisoners outside the target list.
type BulkCleanupMode string

const (
	BulkCleanupKeepAll           BulkCleanupMode = "KEEP_ALL"
	BulkCleanupExpireUnspecified BulkCleanupMode = "EXPIRE_FOR_PRISON_NUMBERS_NOT_SPECIFIED"
)

// BulkRequest applies one alert code across a list of prisoners.
type BulkRequest struct {
	AlertCode     string          `json:"alertCode" binding:"required"`
	PrisonNumbers []string        `json:"prisonNumbers" binding:"required"`
	Description   string          `json:"description,omitempty"`
	Mode          BulkMode        `json:"mode" binding:"required"`
	CleanupMode   BulkCleanupMode `json:"cleanupMode,omitempty"`
}

// ResyncComment carries a comment from the external system of record.
type ResyncComment struct {
	Text                 string    `json:"text" binding:"required"`
	CreatedAt            time.Time `json:"createdAt" binding:"required"`
	CreatedBy            string    `json:"createdBy" binding:"required"`
	CreatedByDisplayName string    `json:"createdByDisplayName" binding:"required"`
}

// ResyncAlert is one alert in the authoritative snapshot for a prisoner.
type ResyncAlert struct {
	OffenderBookID            int64           `json:"offenderBookId" binding:"required"`
	AlertSequence             int             `json:"alertSeq" binding:"required"`
	AlertCode                 string          `json:"alertCode" binding:"required"`
	Description               string          `json:"description,omitempty"`
	AuthorisedBy              string          `json:"authorisedBy,omitempty"`
	ActiveFrom                Date            `json:"activeFrom" binding:"required"`
	ActiveTo                  *Date           `json:"activeTo,omitempty"`
	CreatedAt                 time.Time       `json:"createdAt" binding:"required"`
	CreatedBy                 string          `json:"createdBy" binding:"required"`
	CreatedByDisplayName      string          `json:"createdByDisplayName" binding:"required"`
	LastModifiedAt            *time.Time      `json:"lastModifiedAt,omitempty"`
	LastModifiedBy            string          `json:"lastModifiedBy,omitempty"`
	LastModifiedByDisplayName string          `json:"lastModifiedByDisplayName,omitempty"`
	Comments                  []ResyncComment `json:"comments,omitempty"`
}

// CreateAlertCodeRequest adds a code to the reference-data catalog.
type CreateAlertCodeRequest struct {
	Code        string `json:"code" binding:"required"`
	TypeCode    string `json:"alertTypeCode" binding:"required"`
	Description string `json:"description" binding:"required"`
}
