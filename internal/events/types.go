package events

import (
	"time"

	"github.com/google/uuid"

	"prisoner-alerts-api/internal/models"
)

const (
	TypeAlertCreated        = "prisoner-alerts.alert.created"
	TypeAlertUpdated        = "prisoner-alerts.alert.updated"
	TypeAlertDeleted        = "prisoner-alerts.alert.deleted"
	TypePersonAlertsChanged = "prisoner-alerts.person.alerts.changed"
)

// Event is the wire form of every outbound domain event. Alert-level events
// carry the alert UUID and code; the person-level changed signal carries only
// the prison number.
type Event struct {
	EventID      uuid.UUID  `json:"eventId"`
	Type         string     `json:"eventType"`
	OccurredAt   time.Time  `json:"occurredAt"`
	PrisonNumber string     `json:"prisonNumber"`
	AlertUUID    *uuid.UUID `json:"alertUuid,omitempty"`
	AlertCode    string     `json:"alertCode,omitempty"`
}

// AlertEvent builds an alert-level event of the given type.
func AlertEvent(eventType string, a *models.Alert) Event {
	alertUUID := a.AlertUUID
	return Event{
		EventID:      uuid.New(),
		Type:         eventType,
		OccurredAt:   time.Now(),
		PrisonNumber: a.PrisonNumber,
		AlertUUID:    &alertUUID,
		AlertCode:    a.Code.Code,
	}
}

// PersonAlertsChanged builds the per-prisoner changed signal, emitted once
// per prisoner per operation.
func PersonAlertsChanged(prisonNumber string) Event {
	return Event{
		EventID:      uuid.New(),
		Type:         TypePersonAlertsChanged,
		OccurredAt:   time.Now(),
		PrisonNumber: prisonNumber,
	}
}
