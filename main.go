package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stadiumparking/internal/config"
	"stadiumparking/internal/database"
	"stadiumparking/internal/logger"
	"stadiumparking/internal/router"
	"stadiumparking/internal/storage"
	"stadiumparking/internal/viewgate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.ModeratorKey == "" && cfg.AdminKey == "" {
		logger.Warn("MODERATOR_KEY and ADMIN_KEY are unset, elevated registration is disabled")
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.L().Fatal("failed to initialize database", zap.Error(err))
	}

	gate, closeGate, err := newViewGate(cfg, db)
	if err != nil {
		logger.L().Fatal("failed to initialize view gate", zap.Error(err))
	}
	defer closeGate()

	files, err := newFileStore(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("failed to initialize file storage", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router.Setup(cfg, db, gate, files),
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("view_store", cfg.ViewStore),
			zap.Duration("view_cooldown", cfg.ViewCooldown),
			zap.String("storage", cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}

func newViewGate(cfg *config.Config, db *gorm.DB) (viewgate.Gate, func(), error) {
	switch cfg.ViewStore {
	case "redis":
		gate, err := viewgate.NewRedisGate(cfg.RedisURL, cfg.ViewCooldown)
		if err != nil {
			return nil, nil, err
		}
		return gate, func() { _ = gate.Close() }, nil
	case "", "database":
		return viewgate.NewDBGate(db, cfg.ViewCooldown), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported view store %q", cfg.ViewStore)
	}
}

func newFileStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
	case "", "local":
		return storage.NewLocalStore(cfg.UploadDir, "/uploads")
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
