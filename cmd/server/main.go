// FileDepot Server
//
// Features:
// - Prometheus metrics & structured logging (zap)
// - Token-based sessions backed by Redis
// - User file tree with folders, files, and images
// - Public/private content with per-user isolation
// - Background thumbnail generation for images
// - Multi-backend blob storage (S3, local)
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/filedepot/filedepot/internal/api"
	"github.com/filedepot/filedepot/internal/auth"
	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/files"
	"github.com/filedepot/filedepot/internal/logging"
	"github.com/filedepot/filedepot/internal/metadata/mongo"
	"github.com/filedepot/filedepot/internal/metrics"
	"github.com/filedepot/filedepot/internal/session"
	"github.com/filedepot/filedepot/internal/storage"
	"github.com/filedepot/filedepot/internal/thumbs"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("FileDepot Server starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MongoDB
	logging.Info("connecting to MongoDB...")
	metaStore, err := mongo.New(ctx, cfg.MongoURL, cfg.Database)
	if err != nil {
		logging.Fatal("database connection failed", zap.Error(err))
	}
	defer metaStore.Close(context.Background())

	if err := metaStore.EnsureIndexes(ctx); err != nil {
		logging.Fatal("index creation failed", zap.Error(err))
	}

	// Initialize Redis-backed sessions
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	cache := session.NewRedisKV(redisClient)
	sessions := session.NewManager(cache, cfg.TokenTTL)
	if err := cache.Ping(ctx); err != nil {
		// Sessions fail closed per request; startup continues.
		logging.Error("redis unreachable at startup", zap.Error(err))
	}

	// Initialize auth
	credentials := auth.NewCredentials(metaStore)
	resolver := auth.NewResolver(credentials, sessions, metaStore)

	// Initialize blob storage
	blobs, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		logging.Fatal("storage init failed", zap.Error(err))
	}
	defer blobs.Close()
	logging.Info("blob storage initialized", zap.String("backend", blobs.Type()))

	// Initialize thumbnail worker pool
	pool := thumbs.NewPool(metaStore, blobs, cfg.ThumbWorkers)
	pool.Start(ctx)
	defer pool.Stop()

	// File tree engine
	engine := files.NewEngine(metaStore, blobs, pool)

	// Create API server
	srv := api.NewServer(resolver, credentials, engine, metaStore, cache, cfg.MaxUploadSize)

	// Start metrics server
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(),
	}
	go func() {
		logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("metrics server error", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		cancel()
		httpServer.Close()
		metricsServer.Close()
	}()

	// Start periodic store health probes
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
				metrics.SetStoreUp("db", metaStore.Ping(probeCtx) == nil)
				metrics.SetStoreUp("redis", cache.Ping(probeCtx) == nil)
				probeCancel()
			}
		}
	}()

	logging.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("server error", zap.Error(err))
	}
}
