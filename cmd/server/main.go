package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"planboard/internal/engine"
	"planboard/internal/handler"
	"planboard/internal/httpserver"
	"planboard/internal/mqhandler"
	"planboard/internal/repository"
	"planboard/internal/service"
	"planboard/pkg/config"
	"planboard/pkg/db"
	"planboard/pkg/logger"
	"planboard/pkg/mq"
	"planboard/pkg/redis"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting analysis service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis cache
	cache := redis.NewClient(cfg.Redis)
	defer cache.Close()

	// MQ publisher for project.delayed
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	taskRepo := repository.NewTaskRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)

	eng := engine.NewWithConfig(cfg.Engine)
	svc := service.NewAnalysisService(
		taskRepo,
		userRepo,
		projectRepo,
		eng,
		cache,
		publisher,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		log,
	)

	// MQ consumer for task.updated cache invalidation
	log.Info("Initializing MQ consumer for task.updated...",
		zap.String("queue", "analysis.task.updated.q"),
		zap.String("routing_key", "task.updated"),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "analysis.task.updated.q", "task.updated", log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	taskUpdatedHandler := mqhandler.NewTaskUpdatedHandler(svc, log)
	consumer.SetHandler(taskUpdatedHandler.Handle)

	go func() {
		log.Info("Starting task.updated consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("task.updated consumer failed", zap.Error(err))
		}
	}()

	// HTTP Server
	analysisHandler := handler.NewAnalysisHandler(svc, log)
	planHandler := handler.NewPlanHandler(log)
	router := httpserver.NewRouter(analysisHandler, planHandler, log, dbConn, consumer)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("analysis service is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.String("mq_queue", "analysis.task.updated.q"),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down analysis service gracefully...")

	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("analysis service shutdown complete")
}
