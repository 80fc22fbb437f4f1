package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/middleware"
	"github.com/havenline/vent-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserController exposes the caller's directory entry. Accounts are managed
// by the identity service; this API only reads them.
type UserController struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserController creates a UserController reading from db
func NewUserController(db *gorm.DB, logger *zap.Logger) *UserController {
	return &UserController{db: db, logger: logger}
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func (uc *UserController) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	claims, err := middleware.GetClaims(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, err.Error())
		return
	}
	tokenRole := models.RoleUser
	if custom, ok := claims.CustomClaims.(*middleware.CustomClaims); ok {
		tokenRole = custom.EffectiveRole()
	}

	var user models.User
	if err := uc.db.WithContext(c.Request.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondFailure(c, http.StatusNotFound, apperrors.CodeUserNotFound, "User profile not found")
			return
		}
		respondError(c, uc.logger, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"user":       user,
		"token_role": tokenRole,
	})
}
