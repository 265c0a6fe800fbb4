package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sendo-kakeru/image-resize/internal/api"
	"github.com/sendo-kakeru/image-resize/internal/config"
	"github.com/sendo-kakeru/image-resize/internal/pipeline"
	"github.com/sendo-kakeru/image-resize/internal/ratelimit"
	"github.com/sendo-kakeru/image-resize/internal/storage"
	"github.com/sendo-kakeru/image-resize/internal/store"
	"github.com/sendo-kakeru/image-resize/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lmsgprefix)

	if err := cfg.Storage.Validate(); err != nil {
		logger.Fatalf("storage configuration: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  cfg.Telemetry.ServiceName,
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	}, logger)
	if err != nil {
		logger.Fatalf("tracing setup failed: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Printf("tracing shutdown error: %v", err)
		}
	}()

	if err := pipeline.Startup(); err != nil {
		logger.Fatalf("codec startup failed: %v", err)
	}
	defer pipeline.Shutdown()

	storageClient, err := storage.NewClient(storage.Config{
		Endpoint: cfg.Storage.Endpoint,
		Access:   cfg.Storage.AccessKey,
		Secret:   cfg.Storage.SecretKey,
		Bucket:   cfg.Storage.Bucket,
		UseSSL:   cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatalf("storage client init failed: %v", err)
	}
	logger.Printf("object store bucket=%s", storageClient.Bucket())

	if cfg.Storage.EnsureBucket {
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := storageClient.EnsureBucket(ensureCtx)
		cancel()
		if err != nil {
			logger.Fatalf("bucket bootstrap failed: %v", err)
		}
	}

	processor, err := pipeline.NewProcessor(cfg.Pipeline.MaxConcurrent)
	if err != nil {
		logger.Fatalf("pipeline init failed: %v", err)
	}

	var rateLimiter api.RateLimiter
	if cfg.RateLimit.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		limiter, err := ratelimit.NewLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, "")
		if err != nil {
			logger.Fatalf("rate limiter init failed: %v", err)
		}
		rateLimiter = limiter
	}

	var usageStore store.UsageStore
	if cfg.Database.DSN != "" {
		pgStore, err := store.NewPostgresUsageStore(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatalf("usage store init failed: %v", err)
		}
		defer func() {
			if err := pgStore.Close(); err != nil {
				logger.Printf("usage store close error: %v", err)
			}
		}()
		usageStore = pgStore
	}

	app := api.NewServer(logger, storageClient, processor, usageStore, rateLimiter)

	httpServer := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s", cfg.API.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Println("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}
