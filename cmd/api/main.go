package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/merchantiq/pricewise-backend/api/routes"
	"github.com/merchantiq/pricewise-backend/internal/analytics"
	"github.com/merchantiq/pricewise-backend/internal/auth"
	"github.com/merchantiq/pricewise-backend/internal/catalog"
	"github.com/merchantiq/pricewise-backend/internal/categories"
	"github.com/merchantiq/pricewise-backend/internal/configfields"
	"github.com/merchantiq/pricewise-backend/internal/previews"
	"github.com/merchantiq/pricewise-backend/internal/reports"
	"github.com/merchantiq/pricewise-backend/internal/scenarios"
	"github.com/merchantiq/pricewise-backend/internal/users"
	"github.com/merchantiq/pricewise-backend/pkg/auth/session"
	bigquerypkg "github.com/merchantiq/pricewise-backend/pkg/bigquery"
	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/metrics"
	"github.com/merchantiq/pricewise-backend/pkg/migrate"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/redis"
	"github.com/merchantiq/pricewise-backend/pkg/storage/gcs"
	"github.com/merchantiq/pricewise-backend/pkg/version"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	// GCS and BigQuery are optional: previews fall back to redis and
	// analytics writes become no-ops when they are not configured.
	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs", err)
			}
		}()
	}

	var bigqueryClient *bigquerypkg.Client
	if cfg.FeatureFlags.AnalyticsEnabled && cfg.BigQuery.Dataset != "" {
		bigqueryClient, err = bigquerypkg.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer func() {
			if err := bigqueryClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery", err)
			}
		}()
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	simulatorMetrics := metrics.NewSimulatorMetrics(registry)
	analyticsWriter := analytics.NewWriter(bigqueryClient, logg)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	platformVersion := version.Resolve(cfg.Version)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:     users.NewRepository(dbClient.DB()),
		Sessions:  sessionManager,
		Limiter:   redisClient,
		JWT:       cfg.JWT,
		RateLimit: cfg.AuthRateLimit,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:     users.NewRepository(dbClient.DB()),
		DB:       dbClient,
		Outbox:   outboxService,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categories.ServiceParams{
		Repo: categories.NewRepository(dbClient.DB()),
		DB:   dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:       catalog.NewRepository(dbClient.DB()),
		Categories: categories.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	configService, err := configfields.NewService(configfields.ServiceParams{
		Repo: configfields.NewRepository(dbClient.DB()),
		DB:   dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create configuration service", err)
		os.Exit(1)
	}

	scenarioService, err := scenarios.NewService(scenarios.ServiceParams{
		Repo:      scenarios.NewRepository(dbClient.DB()),
		Catalog:   catalog.NewRepository(dbClient.DB()),
		DB:        dbClient,
		Outbox:    outboxService,
		Analytics: analyticsWriter,
		Metrics:   simulatorMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scenario service", err)
		os.Exit(1)
	}

	previewParams := previews.StoreParams{
		Repo:    previews.NewRepository(dbClient.DB()),
		Cache:   redisClient,
		Config:  cfg.Reports,
		Metrics: simulatorMetrics,
		Logger:  logg,
	}
	if gcsClient != nil {
		previewParams.Objects = gcsClient
	}
	previewStore, err := previews.NewStore(previewParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create preview store", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.ServiceParams{
		Repo:      reports.NewRepository(dbClient.DB()),
		DB:        dbClient,
		Scenarios: scenarioService,
		Previews:  previewStore,
		Configs:   configService,
		Outbox:    outboxService,
		Analytics: analyticsWriter,
		Metrics:   simulatorMetrics,
		Config:    cfg.Reports,
		Version:   platformVersion,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	// Pinger interfaces must stay nil when the client is nil; a typed nil
	// pointer would defeat the readiness nil checks.
	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}
	var bigqueryPinger bigquerypkg.Pinger
	if bigqueryClient != nil {
		bigqueryPinger = bigqueryClient
	}

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		gcsPinger,
		bigqueryPinger,
		sessionManager,
		registry,
		routes.Services{
			Auth:       authService,
			Users:      userService,
			Categories: categoryService,
			Catalog:    catalogService,
			Configs:    configService,
			Scenarios:  scenarioService,
			Reports:    reportService,
			Previews:   previewStore,
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"version": platformVersion,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error draining api server", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
