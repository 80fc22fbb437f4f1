package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/config"
	"github.com/havenline/vent-api/models"
	"go.uber.org/zap"
)

// Context keys set by EnsureValidToken.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextClaims = "validated_claims"
)

// adminPermission grants the admin role to Auth0 tokens that carry RBAC permissions instead of a role claim.
const adminPermission = "admin:messaging"

// CustomClaims contains the application claims we read from the token.
type CustomClaims struct {
	Role        string   `json:"role"`
	Scope       string   `json:"scope"`
	Permissions []string `json:"permissions"`
}

// Validate rejects roles this service does not know.
func (c CustomClaims) Validate(ctx context.Context) error {
	switch c.Role {
	case "", models.RoleUser, models.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("unknown role %q", c.Role)
	}
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expectedScope {
			return true
		}
	}
	return false
}

// EffectiveRole resolves the caller's role. An explicit role claim wins;
// otherwise the admin permission or scope grants admin, and everyone else is a user.
func (c CustomClaims) EffectiveRole() string {
	if c.Role != "" {
		return c.Role
	}
	if c.HasScope(adminPermission) {
		return models.RoleAdmin
	}
	for _, p := range c.Permissions {
		if p == adminPermission {
			return models.RoleAdmin
		}
	}
	return models.RoleUser
}

func newValidator(cfg *config.Config) (*validator.Validator, error) {
	customClaims := validator.WithCustomClaims(func() validator.CustomClaims {
		return &CustomClaims{}
	})

	if cfg.UsesAuth0() {
		issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
		return validator.New(
			provider.KeyFunc,
			validator.RS256,
			issuerURL.String(),
			[]string{cfg.Auth0Audience},
			customClaims,
			validator.WithAllowedClockSkew(time.Minute),
		)
	}

	secret := []byte(cfg.JWTSecret)
	return validator.New(
		func(context.Context) (interface{}, error) { return secret, nil },
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		customClaims,
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken checks the bearer token and stores the caller's id and role in the Gin context.
// Tokens are verified against Auth0's JWKS when AUTH0_DOMAIN is set, otherwise against JWT_SECRET.
func EnsureValidToken(cfg *config.Config, logger *zap.Logger) (gin.HandlerFunc, error) {
	jwtValidator, err := newValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Debug("rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))

		code := "INVALID_TOKEN"
		message := "Failed to validate JWT."
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			code = apperrors.CodeUnauthorized
			message = "Authorization header is required"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := fmt.Fprintf(w, `{"success":false,"error":{"code":%q,"message":%q}}`, code, message); writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}

	checker := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		validated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok || token.RegisteredClaims.Subject == "" {
				errorHandler(w, r, errors.New("token has no subject"))
				return
			}

			role := models.RoleUser
			if claims, ok := token.CustomClaims.(*CustomClaims); ok {
				role = claims.EffectiveRole()
			}

			validated = true
			c.Request = r
			c.Set(ContextUserID, token.RegisteredClaims.Subject)
			c.Set(ContextRole, role)
			c.Set(ContextClaims, token)
		}

		checker.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !validated {
			c.Abort()
			return
		}
		c.Next()
	}, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetRole returns the caller's role, defaulting to user.
func GetRole(c *gin.Context) string {
	if role, ok := c.Get(ContextRole); ok {
		if s, ok := role.(string); ok && s != "" {
			return s
		}
	}
	return models.RoleUser
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireRole is a middleware that only lets callers with the given role through
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := GetUserID(c); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    apperrors.CodeUnauthorized,
					"message": "Authentication required",
				},
			})
			return
		}

		if GetRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    apperrors.CodeAdminRequired,
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.Message
}
