package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storage-service/internal/MinIO"
	"storage-service/internal/config"
	"storage-service/internal/handler/httpHandler"
	"storage-service/internal/repository/entryRepo"
	"storage-service/internal/repository/quotaRepo"
	"storage-service/internal/repository/vaultRepo"
	"storage-service/internal/service/accessService"
	"storage-service/internal/service/catalogService"
	"storage-service/internal/service/uploadService"
	"storage-service/internal/service/vaultService"
	"storage-service/internal/upload"
	"storage-service/pkg/database/postgres"
	"storage-service/pkg/database/redis"
	"storage-service/pkg/logger"
	"storage-service/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("error loading config", zap.Error(err))
	}

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("error connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.New(cfg.Redis)
	defer redisClient.Close()

	store, err := MinIO.New(cfg.MinIO)
	if err != nil {
		log.Fatal("error connecting to object store", zap.Error(err))
	}

	entries := entryRepo.New(pool)
	if err := entries.EnsureSchema(ctx); err != nil {
		log.Fatal("error preparing catalog schema", zap.Error(err))
	}
	vaultPins := vaultRepo.New(pool)
	if err := vaultPins.EnsureSchema(ctx); err != nil {
		log.Fatal("error preparing vault schema", zap.Error(err))
	}
	quota := quotaRepo.New(redisClient, cfg.QuotaLimitBytes)

	assembler, err := upload.NewAssembler(cfg.StagingDir, log)
	if err != nil {
		log.Fatal("error preparing staging dir", zap.Error(err))
	}

	access := accessService.NewEvaluator(nil)
	uploads := uploadService.New(assembler, store, quota, entries, cfg.IOTimeout, nil, log)
	catalog := catalogService.New(entries, store, quota, access, cfg.PreviewURLTTL, nil, log)
	vault := vaultService.New(vaultPins, log)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	api.Use(middleware.Auth(cfg.JWTSecret))
	httpHandler.New(uploads, catalog, vault, log).Register(api)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
