package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/services"
	"go.uber.org/zap"
)

// RespondRequestBody is the body of POST /message-requests/:id/respond.
// Clients send either {"action": "accept"} or {"status": "accepted"}.
type RespondRequestBody struct {
	Action string `json:"action"`
	Status string `json:"status"`
}

func (b RespondRequestBody) decision() string {
	if b.Action != "" {
		return b.Action
	}
	return b.Status
}

// RequestController serves the message request lifecycle
type RequestController struct {
	engine *services.Engine
	logger *zap.Logger
}

// NewRequestController creates a new message request controller
func NewRequestController(engine *services.Engine, logger *zap.Logger) *RequestController {
	return &RequestController{engine: engine, logger: logger}
}

// Create handles POST /api/v1/message-requests
func (rc *RequestController) Create(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	request, err := rc.engine.CreateRequest(c.Request.Context(), senderID, req)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	respondData(c, http.StatusCreated, request)
}

// ListReceived handles GET /api/v1/message-requests/received
func (rc *RequestController) ListReceived(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := rc.engine.ListReceivedRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	respondData(c, http.StatusOK, requests)
}

// ListSent handles GET /api/v1/message-requests/sent
func (rc *RequestController) ListSent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := rc.engine.ListSentRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	respondData(c, http.StatusOK, requests)
}

// Respond handles POST /api/v1/message-requests/:id/respond
func (rc *RequestController) Respond(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body RespondRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := rc.engine.RespondToRequest(c.Request.Context(), c.Param("id"), userID, body.decision())
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// CanMessage handles GET /api/v1/messaging/can-message/:userId
func (rc *RequestController) CanMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := rc.engine.CanMessage(c.Request.Context(), userID, c.Param("userId"))
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	respondData(c, http.StatusOK, status)
}
