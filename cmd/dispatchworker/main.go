// Command dispatchworker runs the dispatch engine's background job worker
// pool standalone, separate from the HTTP API process.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dispatcher/cvrp-engine/internal/common/cache"
	"github.com/dispatcher/cvrp-engine/internal/common/config"
	"github.com/dispatcher/cvrp-engine/internal/common/database"
	"github.com/dispatcher/cvrp-engine/internal/common/jobs"
	"github.com/dispatcher/cvrp-engine/internal/common/logging"
	"github.com/dispatcher/cvrp-engine/internal/common/monitoring"
	"github.com/dispatcher/cvrp-engine/internal/dispatch"
)

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
	logger.Info("Starting dispatch worker")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	jobManager := jobs.NewManager(db, redisClient, &jobs.ManagerConfig{
		QueueName:         "dispatch:jobs",
		WorkerConcurrency: cfg.JobWorkerCount,
		PollInterval:      cfg.JobPollInterval,
		JobTimeout:        10 * time.Minute,
	})

	oracle := dispatch.NewCachedOracle(
		dispatch.NewORSClient(cfg.ORSBaseURL, cfg.ORSAPIKey),
		cache.NewRedisCache(redisClient, "dispatch"),
		monitoring.NewCacheMetrics(redisClient),
		15*time.Minute,
	)
	repo := dispatch.NewRepository(db)
	orchestrator := dispatch.NewOrchestrator(repo, oracle)
	jobManager.RegisterHandler(dispatch.NewHandler(orchestrator, jobManager))

	if err := jobManager.Start(); err != nil {
		log.Fatal("Failed to start job manager:", err)
	}
	logger.Info("Dispatch worker ready", "workers", cfg.JobWorkerCount)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Warn("Shutting down dispatch worker...")
	jobManager.Stop()
	logger.Info("Dispatch worker exited gracefully")
}
