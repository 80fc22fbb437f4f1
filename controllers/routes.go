package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/middleware"
	"github.com/havenline/vent-api/models"
)

// Handlers groups the controllers mounted under /api/v1.
type Handlers struct {
	Requests      *RequestController
	Messages      *MessageController
	Notifications *NotificationController
	Admin         *AdminController
	Users         *UserController
}

// RegisterRoutes mounts every authenticated route on api. The group must
// already carry the authentication middleware. createLimit guards request
// creation and may be nil.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, createLimit gin.HandlerFunc) {
	createHandlers := []gin.HandlerFunc{h.Requests.Create}
	if createLimit != nil {
		createHandlers = append([]gin.HandlerFunc{createLimit}, createHandlers...)
	}

	requests := api.Group("/message-requests")
	{
		requests.POST("", createHandlers...)
		requests.GET("/received", h.Requests.ListReceived)
		requests.GET("/sent", h.Requests.ListSent)
		requests.POST("/:id/respond", h.Requests.Respond)
	}

	api.GET("/messaging/can-message/:userId", h.Requests.CanMessage)

	conversations := api.Group("/conversations")
	{
		conversations.GET("", h.Messages.ListConversations)
		conversations.GET("/:id/messages", h.Messages.ListMessages)
		conversations.POST("/:id/messages", h.Messages.SendMessage)
	}
	api.PATCH("/messages/:id", h.Messages.UpdateStatus)

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.GET("/unread-count", h.Notifications.UnreadCount)
		notifications.PATCH("/read-all", h.Notifications.MarkAllRead)
		notifications.PATCH("/:id/read", h.Notifications.MarkRead)
		notifications.DELETE("/:id", h.Notifications.Delete)
	}

	api.GET("/users/me", h.Users.GetMyProfile)

	admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.DELETE("/message-requests/:id", h.Admin.DeleteRequest)
		admin.DELETE("/conversations/:id", h.Admin.DeleteConversation)
		admin.DELETE("/messages/:id", h.Admin.DeleteMessage)
		admin.DELETE("/users/:id/messaging-data", h.Admin.DeleteUserData)
		admin.POST("/users/:id/messaging-export", h.Admin.ExportUserData)
	}
}
