package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/config"
	"github.com/havenline/vent-api/middleware"
	"github.com/havenline/vent-api/models"
	"github.com/havenline/vent-api/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	headerTestUser = "X-Test-User"
	headerTestRole = "X-Test-Role"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	store  *services.MockS3Service
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")
	return db
}

// mockAuthMiddleware sets up the context the way EnsureValidToken does,
// taking the caller from test headers. Requests without a user get a 401.
func mockAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerTestUser)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing test user"},
			})
			return
		}
		role := c.GetHeader(headerTestRole)
		if role == "" {
			role = models.RoleUser
		}

		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Set(middleware.ContextClaims, &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: userID},
			CustomClaims:     &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	logger := zap.NewNop()
	metrics := services.NewMetrics(nil)
	notifications := services.NewNotificationService(db)
	engine := services.NewEngine(db, services.NewGormPostDirectory(db), notifications, logger, metrics)
	store := services.NewMockS3Service()

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1", mockAuthMiddleware()), Handlers{
		Requests:      NewRequestController(engine, logger),
		Messages:      NewMessageController(engine, logger),
		Notifications: NewNotificationController(notifications, logger),
		Admin:         NewAdminController(engine, services.NewExporter(db, store, logger, metrics), logger),
		Users:         NewUserController(db, logger),
	}, nil)

	return &testServer{router: router, db: db, store: store}
}

func (s *testServer) seedUser(t *testing.T, id, name, role string) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.User{ID: id, Name: name, Email: id + "@example.com", Role: role}).Error)
}

func (s *testServer) seedVentPost(t *testing.T, id, ownerID string) {
	t.Helper()
	owner := ownerID
	require.NoError(t, s.db.Create(&models.Post{ID: id, UserID: &owner, Content: "vent", Category: models.PostCategoryVent}).Error)
}

// do performs a request as userID (empty for anonymous) and decodes the envelope.
func (s *testServer) do(t *testing.T, method, path, userID, role string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(headerTestUser, userID)
	}
	if role != "" {
		req.Header.Set(headerTestRole, role)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	}
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", response["data"])
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "expected array data, got %v", response["data"])
	return data
}
