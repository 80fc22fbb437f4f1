package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/services"
	"go.uber.org/zap"
)

// AdminController serves moderation and data-subject requests. Every route is
// also behind middleware.RequireRole("admin").
type AdminController struct {
	engine   *services.Engine
	exporter *services.Exporter
	logger   *zap.Logger
}

// NewAdminController creates the moderation controller
func NewAdminController(engine *services.Engine, exporter *services.Exporter, logger *zap.Logger) *AdminController {
	return &AdminController{engine: engine, exporter: exporter, logger: logger}
}

// DeleteRequest handles DELETE /api/v1/admin/message-requests/:id
func (ac *AdminController) DeleteRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := ac.engine.DeleteRequest(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteConversation handles DELETE /api/v1/admin/conversations/:id
func (ac *AdminController) DeleteConversation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := ac.engine.DeleteConversation(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMessage handles DELETE /api/v1/admin/messages/:id
func (ac *AdminController) DeleteMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}

	if err := ac.engine.DeleteMessage(c.Request.Context(), actor, messageID); err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteUserData handles DELETE /api/v1/admin/users/:id/messaging-data
func (ac *AdminController) DeleteUserData(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if _, err := ac.engine.DeleteUserData(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportUserData handles POST /api/v1/admin/users/:id/messaging-export
func (ac *AdminController) ExportUserData(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := ac.exporter.ExportUserData(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondData(c, http.StatusCreated, result)
}
