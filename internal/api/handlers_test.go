package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"prisoner-alerts-api/internal/models"
)

func quietHandler() *Handler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &Handler{logger: logger}
}

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := quietHandler()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", models.NewNotFound("alert", "abc"), http.StatusNotFound},
		{"invalid input", models.NewInvalidInput("alert code(s) ZZ not found"), http.StatusBadRequest},
		{"already exists", models.NewAlreadyExists("duplicate"), http.StatusConflict},
		{"downstream", models.NewDownstream("prisoner search", errors.New("timeout")), http.StatusBadGateway},
		{"wrapped downstream", errors.Join(errors.New("outer"), models.NewDownstream("prisoner search", errors.New("timeout"))), http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			h.respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestActorFromHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Username", "JSMITH")
	c.Request.Header.Set("UserDisplayName", "Jane Smith")

	actor := actorFrom(c)
	assert.Equal(t, "JSMITH", actor.Username)
	assert.Equal(t, "Jane Smith", actor.DisplayName)
}

func TestActorFromDefaultsToSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	actor := actorFrom(c)
	assert.Equal(t, models.SystemUsername, actor.Username)
	assert.Equal(t, models.SystemDisplayName, actor.DisplayName)
}
