package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	redisAdapter "github.com/rentora/posts-service/internal/adapter/cache/redis"
	mongoAdapter "github.com/rentora/posts-service/internal/adapter/mongo"
	natsAdapter "github.com/rentora/posts-service/internal/adapter/nats"
	minioAdapter "github.com/rentora/posts-service/internal/adapter/storage/minio"
	"github.com/rentora/posts-service/internal/auth"
	"github.com/rentora/posts-service/internal/config"
	"github.com/rentora/posts-service/internal/platform/logger"
	"github.com/rentora/posts-service/internal/platform/metrics"
	httpPort "github.com/rentora/posts-service/internal/port/http"
	"github.com/rentora/posts-service/internal/usecase"
)

func main() {
	configPath := "config.yaml"
	if cp := os.Getenv("CONFIG_PATH"); cp != "" {
		configPath = cp
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	zl := appLogger.Logger
	zl.Info("Configuration loaded",
		zap.String("http_port", cfg.HTTP.Port),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.String("minio_bucket", cfg.MinIO.Bucket),
	)

	mongoClient, err := mongoAdapter.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		zl.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			zl.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	zl.Info("Successfully connected to MongoDB")

	postRepo := mongoAdapter.NewPostMongoRepository(mongoClient, cfg.Mongo.Database)
	userRepo := mongoAdapter.NewUserMongoRepository(mongoClient, cfg.Mongo.Database)
	categoryRepo := mongoAdapter.NewCategoryMongoRepository(mongoClient, cfg.Mongo.Database)

	imageStorage, err := minioAdapter.NewImageStorage(&cfg.MinIO, zl.Named("minio"))
	if err != nil {
		zl.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	redisClient, err := redisAdapter.NewRedisClient(&cfg.Redis, zl.Named("redis"))
	if err != nil {
		zl.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheRepo := redisAdapter.NewRedisCacheRepository(redisClient, zl.Named("redis"))

	publisher, err := natsAdapter.NewNATSPublisher(&cfg.NATS, zl.Named("nats"))
	if err != nil {
		zl.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer publisher.Close()

	tokenService := auth.NewTokenService(cfg.JWT.Secret, userRepo, zl.Named("auth"))
	postUC := usecase.NewPostUsecase(postRepo, userRepo, categoryRepo, imageStorage, cacheRepo, publisher, zl.Named("usecase"))

	mm := metrics.NewMetricsManager("posts_service")
	go func() {
		if err := metrics.StartMetricsServer(cfg.Metrics.Port, zl.Named("metrics"), mm.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	handler := httpPort.NewPostHandler(postUC, mm, zl.Named("http"))
	router := httpPort.NewRouter(handler, tokenService, zl.Named("http"))
	server := httpPort.NewServer(&cfg.HTTP, router, zl.Named("http"))

	go func() {
		if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
	zl.Info("Service stopped")
}
