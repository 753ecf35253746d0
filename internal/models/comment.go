package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a free-text note attached to an alert.
type Comment struct {
	CommentUUID          uuid.UUID `json:"commentUuid"`
	Text                 string    `json:"text"`
	CreatedAt            time.Time `json:"createdAt"`
	CreatedBy            string    `json:"createdBy"`
	CreatedByDisplayName string    `json:"createdByDisplayName"`
}
