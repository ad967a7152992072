package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/dispatcher/cvrp-engine/internal/auth"
	"github.com/dispatcher/cvrp-engine/internal/common/cache"
	"github.com/dispatcher/cvrp-engine/internal/common/config"
	"github.com/dispatcher/cvrp-engine/internal/common/database"
	"github.com/dispatcher/cvrp-engine/internal/common/health"
	"github.com/dispatcher/cvrp-engine/internal/common/jobs"
	"github.com/dispatcher/cvrp-engine/internal/common/logging"
	"github.com/dispatcher/cvrp-engine/internal/common/middleware"
	"github.com/dispatcher/cvrp-engine/internal/common/monitoring"
	"github.com/dispatcher/cvrp-engine/internal/common/ratelimit"
	"github.com/dispatcher/cvrp-engine/internal/dispatch"
	"github.com/dispatcher/cvrp-engine/pkg/models"

	_ "github.com/dispatcher/cvrp-engine/docs"
)

// @title CVRP Dispatch Engine API
// @version 1.0
// @description Clusters orders across a vehicle fleet and solves a capacitated route per vehicle.

// @contact.name Dispatch Engine Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name dispatch
// @tag.description Route dispatch endpoints
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	loggerConfig := &logging.LoggerConfig{
		Level:      logging.LogLevel(cfg.LogLevel),
		Format:     cfg.LogFormat,
		Output:     os.Stdout,
		AddSource:  true,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	logger := logging.NewLogger(loggerConfig)
	logging.InitDefaultLogger(loggerConfig)

	logger.Info("Starting dispatch engine API", "version", "1.0.0")

	logger.Info("Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)
	logger.Info("Database connected successfully")

	sqlDB, _ := db.DB()
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slowQueryLogger := logging.NewSlowQueryLogger(logger, 100*time.Millisecond)
	db.Logger = slowQueryLogger

	queryMonitor := monitoring.NewQueryMonitor(200*time.Millisecond, log.Default())
	if err := db.Use(monitoring.NewQueryMonitorPlugin(queryMonitor, monitoring.NewMetricsCollector())); err != nil {
		logger.Warn("Failed to install query monitor plugin", "error", err)
	}

	logger.Info("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connected successfully")

	logger.Info("Running schema migration...")
	if err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.AuditLog{},
		&dispatch.DepotRecord{},
		&dispatch.CustomerRecord{},
		&dispatch.VehicleRecord{},
		&dispatch.ProductRecord{},
		&dispatch.OrderRecord{},
		&dispatch.OrderProductRecord{},
		&dispatch.Task{},
		&dispatch.TaskStop{},
	); err != nil {
		logger.Error("Failed to migrate dispatch schema", "error", err)
		log.Fatal("Failed to migrate dispatch schema:", err)
	}

	auditLogger := logging.NewAuditLogger(logger, db)
	healthChecker := health.NewHealthChecker(db, redisClient, "Dispatch Engine API", "1.0.0")
	healthHandler := health.NewHandler(healthChecker)
	metricsHandler := health.NewMetricsHandler(healthChecker)

	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(logging.RequestLoggingMiddleware(logger))
	r.Use(logging.PerformanceLoggingMiddleware(logger, 1*time.Second))
	r.Use(logging.ErrorLoggingMiddleware(logger))
	r.Use(logging.RecoveryLoggingMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.APIVersionMiddleware(middleware.DefaultAPIVersionConfig()))
	r.Use(logging.AuditMiddleware(auditLogger))

	// Dispatch submissions trigger a GA solve plus rate-limited oracle calls,
	// so the submit endpoint gets its own tighter limit than the default.
	rateLimitManager := ratelimit.NewRateLimitManager(redisClient, &ratelimit.RateLimitConfig{
		Strategy: ratelimit.FixedWindow,
		Requests: 100,
		Window:   time.Minute,
	})
	rateLimitManager.AddEndpointConfig(&ratelimit.EndpointConfig{
		Path:   "/api/v1/dispatch",
		Method: "POST",
		Config: &ratelimit.RateLimitConfig{
			Strategy: ratelimit.FixedWindow,
			Requests: 10,
			Window:   time.Minute,
		},
	})
	rateLimitMonitor := ratelimit.NewRateLimitMonitor(redisClient)
	r.Use(ratelimit.MonitoredRateLimitMiddleware(rateLimitManager, rateLimitMonitor))

	logger.Info("Initializing job processing system...")
	jobManager := jobs.NewManager(db, redisClient, &jobs.ManagerConfig{
		QueueName:         "dispatch:jobs",
		WorkerConcurrency: cfg.JobWorkerCount,
		PollInterval:      cfg.JobPollInterval,
		JobTimeout:        10 * time.Minute,
	})

	cacheMetrics := monitoring.NewCacheMetrics(redisClient)
	r.Use(monitoring.TrackedCacheMiddleware(cacheMetrics))

	oracle := dispatch.NewCachedOracle(
		dispatch.NewORSClient(cfg.ORSBaseURL, cfg.ORSAPIKey),
		cache.NewRedisCache(redisClient, "dispatch"),
		cacheMetrics,
		cache.MatrixExpiration,
	)
	repo := dispatch.NewRepository(db)
	orchestrator := dispatch.NewOrchestrator(repo, oracle)
	dispatchHandler := dispatch.NewHandler(orchestrator, jobManager)
	jobManager.RegisterHandler(dispatchHandler)

	if err := jobManager.Start(); err != nil {
		log.Fatal("Failed to start job manager:", err)
	}
	logger.Info("Job processing system started")

	authService := auth.NewService(db, redisClient, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	dispatchAPI := dispatch.NewAPI(jobManager, oracle)
	jobAPI := jobs.NewJobAPI(jobManager)

	geoCache := middleware.NewCacheMiddleware(redisClient, "response")
	cacheMetricsHandler := monitoring.NewCacheMetricsHandler(cacheMetrics)
	setupRoutes(r, authHandler, dispatchAPI, jobAPI, geoCache, cacheMetricsHandler, cfg, db)

	health.SetupHealthRoutes(r, healthHandler)
	health.SetupMetricsRoutes(r, metricsHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Dispatch engine API starting",
			"port", cfg.Port,
			"health_check", "http://localhost:"+cfg.Port+"/health",
			"api_docs", "http://localhost:"+cfg.Port+"/swagger/index.html",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Warn("Shutting down server...")

	logger.Info("Stopping job processing system...")
	jobManager.Stop()
	logger.Info("Job processing system stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited gracefully")
}

func setupRoutes(
	r *gin.Engine,
	authHandler *auth.Handler,
	dispatchAPI *dispatch.API,
	jobAPI *jobs.JobAPI,
	geoCache *middleware.CacheMiddleware,
	cacheMetricsHandler *monitoring.CacheMetricsHandler,
	cfg *config.Config,
	db *gorm.DB,
) {
	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.GET("/profile", middleware.AuthRequired(cfg.JWTSecret, db), authHandler.GetProfile)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(cfg.JWTSecret, db))
		dispatch.SetupRoutes(protected, dispatchAPI, geoCache)
		jobs.SetupJobRoutes(protected, jobAPI)

		cacheGroup := protected.Group("/cache")
		{
			cacheGroup.GET("/stats", cacheMetricsHandler.GetStats)
			cacheGroup.GET("/health", cacheMetricsHandler.GetHealth)
			cacheGroup.GET("/dashboard", cacheMetricsHandler.GetDashboard)
			cacheGroup.GET("/prometheus", cacheMetricsHandler.GetPrometheusMetrics)
			cacheGroup.POST("/reset", cacheMetricsHandler.ResetMetrics)
		}
	}
}
