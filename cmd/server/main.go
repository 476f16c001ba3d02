package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fixora/assetdash/internal/adapter/auth"
	"github.com/fixora/assetdash/internal/adapter/cache"
	httpadapter "github.com/fixora/assetdash/internal/adapter/http"
	"github.com/fixora/assetdash/internal/adapter/persistence"
	"github.com/fixora/assetdash/internal/adapter/ratelimit"
	"github.com/fixora/assetdash/internal/config"
	"github.com/fixora/assetdash/internal/logger"
	"github.com/fixora/assetdash/internal/observability"
	"github.com/fixora/assetdash/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "assetdash",
	})
	appLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Server.Environment,
	})

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		appLogger.Error(ctx, "Failed to open database", err, nil)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLogger.Error(ctx, "Failed to ping database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.DBName,
		})
		os.Exit(1)
	}
	appLogger.Info(ctx, "Database connection established", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.DBName,
	})

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Rate limiting (Redis-backed or noop based on config)
	limiter, err := ratelimit.New(ctx, ratelimit.Config{
		Enabled:  cfg.RateLimit.Enabled,
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, appLogger)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize rate limiter, continuing without it", err, map[string]interface{}{
			"redis_addr": cfg.GetRedisAddr(),
		})
		limiter = ratelimit.NoopRateLimiter{}
	}

	identity, err := auth.NewJWTIdentityProvider(cfg.Security.JWTSecret, cfg.Security.JWTIssuer)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize identity provider", err, nil)
		os.Exit(1)
	}

	resultCache, err := cache.NewResultCache(cfg.Analytics.CacheMaxEntries, cfg.Analytics.CacheTTL, cache.WithMetrics(metrics))
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize result cache", err, nil)
		os.Exit(1)
	}

	// Initialize use cases
	store := persistence.NewPostgresRecordStore(db, cfg.Analytics.RecordStoreMaxRows)
	analyticsUseCase := usecase.NewAnalyticsUseCase(store, resultCache, appLogger, usecase.AnalyticsSettings{
		PerformanceLookback: cfg.Analytics.PerformanceLookback,
		TrendLookback:       cfg.Analytics.TrendLookback,
		AssetFetchLimit:     cfg.Analytics.AssetFetchLimit,
		EventFetchLimit:     cfg.Analytics.EventFetchLimit,
	}, usecase.WithMetrics(metrics))
	reportUseCase := usecase.NewReportUseCase(store, appLogger, cfg.Analytics.AssetFetchLimit)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		CORSOrigins:  cfg.Server.CORSOrigins,
	}, httpadapter.Dependencies{
		Analytics: httpadapter.NewAnalyticsHandler(analyticsUseCase, reportUseCase, identity, appLogger),
		RateLimit: httpadapter.NewRateLimitMiddleware(limiter, identity, appLogger, metrics, cfg.RateLimit.Requests, cfg.RateLimit.Window,
			httpadapter.TrustProxyHeaders(cfg.Server.TrustProxyHeaders)),
		Metrics:   metrics,
		Gatherer:  registry,
		Logger:    appLogger,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(ctx, "HTTP server stopped unexpectedly", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	if closer, ok := limiter.(interface{ Close() error }); ok {
		closer.Close()
	}
	appLogger.Info(ctx, "Server exited", nil)
}
