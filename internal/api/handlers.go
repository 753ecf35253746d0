package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/events"
	"prisoner-alerts-api/internal/models"
	"prisoner-alerts-api/internal/services"
)

// Catalog is the reference-data surface, backed directly by the database.
type Catalog interface {
	ListTypes(ctx context.Context, includeInactive bool) ([]models.AlertType, error)
	CreateCode(ctx context.Context, req *models.CreateAlertCodeRequest) (*models.AlertCode, error)
	DeactivateCode(ctx context.Context, code string) (*models.AlertCode, error)
	ReactivateCode(ctx context.Context, code string) (*models.AlertCode, error)
}

type Handler struct {
	alerts    *services.AlertService
	merge     *services.MergeService
	bulk      *services.BulkService
	resync    *services.ResyncService
	catalog   Catalog
	publisher events.Publisher
	hub       *events.Hub
	logger    *logrus.Logger
}

func NewHandler(alerts *services.AlertService, merge *services.MergeService, bulk *services.BulkService,
	resync *services.ResyncService, catalog Catalog, publisher events.Publisher, hub *events.Hub,
	logger *logrus.Logger) *Handler {
	return &Handler{
		alerts:    alerts,
		merge:     merge,
		bulk:      bulk,
		resync:    resync,
		catalog:   catalog,
		publisher: publisher,
		hub:       hub,
		logger:    logger,
	}
}

// respondError maps the error taxonomy onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		notFound      *models.NotFoundError
		invalidInput  *models.InvalidInputError
		alreadyExists *models.AlreadyExistsError
		downstream    *models.DownstreamError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &alreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &downstream):
		h.logger.Errorf("Downstream failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func actorFrom(c *gin.Context) models.Actor {
	actor := models.Actor{
		Username:    c.GetHeader("Username"),
		DisplayName: c.GetHeader("UserDisplayName"),
	}
	if actor.Username == "" {
		actor.Username = models.SystemUsername
		actor.DisplayName = models.SystemDisplayName
	}
	return actor
}

// flush publishes the given alert-level events plus one alerts-changed signal
// per affected prisoner. Called after the unit of work committed, so a
// publish failure is logged rather than surfaced.
func (h *Handler) flush(ctx context.Context, changes *services.ChangeSet, alertEvents ...events.Event) {
	evs := make([]events.Event, 0, changes.Len()+len(alertEvents))
	evs = append(evs, alertEvents...)
	for _, pn := range changes.PrisonNumbers() {
		evs = append(evs, events.PersonAlertsChanged(pn))
	}
	if err := h.publisher.Publish(ctx, evs...); err != nil {
		h.logger.Errorf("Failed to publish events: %v", err)
	}
}

func alertUUIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("alertUuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) CreateAlert(c *gin.Context) {
	var req models.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, changes, err := h.alerts.Create(c.Request.Context(), &req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes, events.AlertEvent(events.TypeAlertCreated, alert))
	c.JSON(http.StatusCreated, models.NewAlertResponse(alert))
}

func (h *Handler) GetAlert(c *gin.Context) {
	id, ok := alertUUIDParam(c)
	if !ok {
		return
	}
	alert, err := h.alerts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewAlertResponse(alert))
}

func (h *Handler) UpdateAlert(c *gin.Context) {
	id, ok := alertUUIDParam(c)
	if !ok {
		return
	}
	var req models.UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, changes, err := h.alerts.Update(c.Request.Context(), id, &req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes, events.AlertEvent(events.TypeAlertUpdated, alert))
	c.JSON(http.StatusOK, models.NewAlertResponse(alert))
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	id, ok := alertUUIDParam(c)
	if !ok {
		return
	}
	alert, changes, err := h.alerts.Delete(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes, events.AlertEvent(events.TypeAlertDeleted, alert))
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := alertUUIDParam(c)
	if !ok {
		return
	}
	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, comment, changes, err := h.alerts.AddComment(c.Request.Context(), id, req.Text, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes, events.AlertEvent(events.TypeAlertUpdated, alert))
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListPrisonerAlerts(c *gin.Context) {
	alerts, err := h.alerts.ListByPrisonNumber(c.Request.Context(), c.Param("prisonNumber"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	responses := make([]models.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		responses = append(responses, models.NewAlertResponse(a))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) MigrateAlert(c *gin.Context) {
	var req models.MigrateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, changes, err := h.alerts.Migrate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes, events.AlertEvent(events.TypeAlertCreated, alert))
	c.JSON(http.StatusCreated, models.NewAlertResponse(alert))
}

func (h *Handler) MergeAlerts(c *gin.Context) {
	var req models.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, changes, err := h.merge.Merge(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) BulkAlerts(c *gin.Context) {
	var req models.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, changes, err := h.bulk.Run(c.Request.Context(), &req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ResyncAlerts(c *gin.Context) {
	var incoming []models.ResyncAlert
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resynced, changes, err := h.resync.Resync(c.Request.Context(), c.Param("prisonNumber"), incoming)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.flush(c.Request.Context(), changes)
	c.JSON(http.StatusOK, resynced)
}

func (h *Handler) ListAlertTypes(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	types, err := h.catalog.ListTypes(c.Request.Context(), includeInactive)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if types == nil {
		types = []models.AlertType{}
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) CreateAlertCode(c *gin.Context) {
	var req models.CreateAlertCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.catalog.CreateCode(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *Handler) DeactivateAlertCode(c *gin.Context) {
	code, err := h.catalog.DeactivateCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *Handler) ReactivateAlertCode(c *gin.Context) {
	code, err := h.catalog.ReactivateCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}
