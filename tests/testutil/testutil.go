package testutil

import (
	"testing"

	"github.com/havenline/vent-api/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestJWTSecret is the HS256 secret LoadTestConfig installs.
const TestJWTSecret = "integration-test-secret-that-is-long-enough"

// LoadTestConfig points the environment at an in-memory sqlite database and
// loads it through config.Load, the same path the server takes. Exports stay
// disabled unless the caller sets AWS_S3_BUCKET afterwards.
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "file::memory:?cache=private")
	t.Setenv("JWT_SECRET", TestJWTSecret)
	t.Setenv("JWT_ISSUER", "vent-api")
	t.Setenv("JWT_AUDIENCE", "vent-api-clients")
	t.Setenv("AUTH0_DOMAIN", "")
	t.Setenv("AWS_S3_BUCKET", "")
	t.Setenv("REQUEST_RATE_PER_MINUTE", "0")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load test configuration")
	require.True(t, cfg.IsTest(), "SAFETY CHECK FAILED: configuration must be loaded with GO_ENV=test")
	return cfg
}

// OpenTestDatabase connects to cfg.DatabaseURL, migrates it and closes it when
// the test ends. The pool is pinned to one connection so every query sees the
// same in-memory database.
func OpenTestDatabase(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := config.ConnectDatabase(cfg, zap.NewNop())
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = config.CloseDatabase(db) })

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")
	return db
}
