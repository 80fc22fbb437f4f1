package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/services"
	"go.uber.org/zap"
)

// ListNotificationsQuery binds the query string of GET /notifications
type ListNotificationsQuery struct {
	Skip   int   `form:"skip" binding:"min=0"`
	Limit  int   `form:"limit" binding:"min=0,max=100"`
	IsRead *bool `form:"is_read"`
}

// NotificationController serves the recipient's notification inbox
type NotificationController struct {
	notifications *services.NotificationService
	logger        *zap.Logger
}

// NewNotificationController creates a new notification controller
func NewNotificationController(notifications *services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, logger: logger}
}

// List handles GET /api/v1/notifications
func (nc *NotificationController) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query ListNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidation(c, err)
		return
	}

	notifications, err := nc.notifications.List(c.Request.Context(), userID, services.ListNotificationsParams{
		Skip:   query.Skip,
		Limit:  query.Limit,
		IsRead: query.IsRead,
	})
	if err != nil {
		respondError(c, nc.logger, err)
		return
	}
	respondData(c, http.StatusOK, notifications)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := nc.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, nc.logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"unread_count": count})
}

// MarkRead handles PATCH /api/v1/notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notification, err := nc.notifications.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, nc.logger, err)
		return
	}
	respondData(c, http.StatusOK, notification)
}

// MarkAllRead handles PATCH /api/v1/notifications/read-all
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	changed, err := nc.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, nc.logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"marked_read": changed})
}

// Delete handles DELETE /api/v1/notifications/:id
func (nc *NotificationController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := nc.notifications.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, nc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
