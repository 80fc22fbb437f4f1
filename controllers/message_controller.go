package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/services"
	"go.uber.org/zap"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateMessageStatusRequest represents the request body for PATCH /messages/:id
type UpdateMessageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MessageController serves conversations and the messages inside them
type MessageController struct {
	engine *services.Engine
	logger *zap.Logger
}

// NewMessageController creates a new message controller
func NewMessageController(engine *services.Engine, logger *zap.Logger) *MessageController {
	return &MessageController{engine: engine, logger: logger}
}

// ListConversations handles GET /api/v1/conversations
func (mc *MessageController) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := mc.engine.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	respondData(c, http.StatusOK, conversations)
}

// ListMessages handles GET /api/v1/conversations/:id/messages.
// Messages from the other participant are marked read as a side effect.
func (mc *MessageController) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messages, err := mc.engine.ListMessages(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	respondData(c, http.StatusOK, messages)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
func (mc *MessageController) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	message, err := mc.engine.PostMessage(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	respondData(c, http.StatusCreated, message)
}

// UpdateStatus handles PATCH /api/v1/messages/:id
func (mc *MessageController) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}

	var req UpdateMessageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	message, err := mc.engine.UpdateMessageStatus(c.Request.Context(), messageID, userID, req.Status)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	respondData(c, http.StatusOK, message)
}
