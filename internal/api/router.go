package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"prisoner-alerts-api/internal/config"
)

func NewRouter(h *Handler, logger *logrus.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	r.GET("/health", h.Health)
	r.GET("/ws/events", h.StreamEvents)

	api := r.Group(cfg.API.BasePath)
	{
		// Alerts
		api.POST("/alerts", h.CreateAlert)
		api.GET("/alerts/:alertUuid", h.GetAlert)
		api.PUT("/alerts/:alertUuid", h.UpdateAlert)
		api.DELETE("/alerts/:alertUuid", h.DeleteAlert)
		api.POST("/alerts/:alertUuid/comments", h.AddComment)
		api.GET("/prisoners/:prisonNumber/alerts", h.ListPrisonerAlerts)

		// Reconcilers and migration
		api.POST("/merge", h.MergeAlerts)
		api.POST("/bulk-alerts", h.BulkAlerts)
		api.POST("/resync/:prisonNumber", h.ResyncAlerts)
		api.POST("/migrate", h.MigrateAlert)

		// Reference data
		api.GET("/alert-types", h.ListAlertTypes)
		api.POST("/alert-codes", h.CreateAlertCode)
		api.PATCH("/alert-codes/:code/deactivate", h.DeactivateAlertCode)
		api.PATCH("/alert-codes/:code/reactivate", h.ReactivateAlertCode)
	}
	return r
}
