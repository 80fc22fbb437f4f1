package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/middleware"
	"github.com/havenline/vent-api/services"
	"go.uber.org/zap"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.PureJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError renders workflow errors with their own status and code.
// Anything else is logged and reported as a database error.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if appErr, ok := apperrors.As(err); ok {
		respondFailure(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	_ = c.Error(err)
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	respondFailure(c, http.StatusInternalServerError, "DATABASE_ERROR", "An internal error occurred")
}

func respondValidation(c *gin.Context, err error) {
	c.PureJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    apperrors.CodeValidation,
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// currentUserID writes a 401 and returns false when the caller is not authenticated.
func currentUserID(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Could not extract user information")
		return "", false
	}
	return userID, true
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: middleware.GetRole(c)}, true
}

// messageIDParam parses the numeric :id of a message route.
func messageIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondFailure(c, http.StatusNotFound, apperrors.CodeMessageNotFound, "Message not found")
		return 0, false
	}
	return uint(id), true
}
