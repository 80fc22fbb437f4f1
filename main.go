package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/havenline/vent-api/config"
	"github.com/havenline/vent-api/controllers"
	"github.com/havenline/vent-api/logging"
	"github.com/havenline/vent-api/middleware"
	"github.com/havenline/vent-api/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting vent messaging API", zap.String("port", cfg.Port))

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := config.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database migration completed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store services.S3Interface
	if cfg.ExportEnabled() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to initialize S3 export store", zap.Error(err))
		}
		store = s3Service
		logger.Info("messaging exports enabled", zap.String("bucket", cfg.AWSS3Bucket))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := newRouter(cfg, db, logger, registry, store)
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server stopped unexpectedly", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newRouter wires the services and controllers onto a gin engine. store may
// be nil, in which case exports answer 503.
func newRouter(cfg *config.Config, db *gorm.DB, logger *zap.Logger, registry *prometheus.Registry, store services.S3Interface) (*gin.Engine, error) {
	auth, err := middleware.EnsureValidToken(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := services.NewMetrics(registry)
	notifications := services.NewNotificationService(db)
	engine := services.NewEngine(db, services.NewGormPostDirectory(db), notifications, logger, metrics,
		services.WithOutreachCategory(cfg.OutreachCategory))
	exporter := services.NewExporter(db, store, logger, metrics)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(db))
	}

	limiter := middleware.NewRateLimiter(cfg.RequestRatePerMin, cfg.RequestRateBurst)
	controllers.RegisterRoutes(v1.Group("", auth), controllers.Handlers{
		Requests:      controllers.NewRequestController(engine, logger),
		Messages:      controllers.NewMessageController(engine, logger),
		Notifications: controllers.NewNotificationController(notifications, logger),
		Admin:         controllers.NewAdminController(engine, exporter, logger),
		Users:         controllers.NewUserController(db, logger),
	}, limiter.Middleware())

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vent messaging API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the underlying SQL database to check connection
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
