package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sakanusa/gerai-analytics-backend/api/controllers"
	"github.com/sakanusa/gerai-analytics-backend/api/routes"
	"github.com/sakanusa/gerai-analytics-backend/internal/archive"
	"github.com/sakanusa/gerai-analytics-backend/internal/dashboard"
	"github.com/sakanusa/gerai-analytics-backend/internal/ingest"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/bigquery"
	"github.com/sakanusa/gerai-analytics-backend/pkg/config"
	"github.com/sakanusa/gerai-analytics-backend/pkg/db"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
	"github.com/sakanusa/gerai-analytics-backend/pkg/metrics"
	"github.com/sakanusa/gerai-analytics-backend/pkg/migrate"
	"github.com/sakanusa/gerai-analytics-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	dashboardMetrics := metrics.NewDashboardMetrics(registry)

	readiness := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService := orders.NewService(ordersRepo)

	var dashboardService dashboard.Service
	if cfg.BigQuery.Disabled {
		dashboardService = dashboard.NewService(ordersRepo, redisClient, nil, dashboardMetrics, logg, cfg.Cache)
	} else {
		bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		requireResource(ctx, logg, "bigquery", err)
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(ctx, "error closing bigquery", err)
			}
		}()

		writer, err := archive.New(bqClient, archive.Config{SnapshotsTable: cfg.BigQuery.SnapshotsTable})
		requireResource(ctx, logg, "snapshot archive writer", err)

		readiness["bigquery"] = bqClient
		dashboardService = dashboard.NewService(ordersRepo, redisClient, writer, dashboardMetrics, logg, cfg.Cache)
	}

	idem, err := ingest.NewIdempotencyManager(redisClient, cfg.Ingest.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	ingestService, err := ingest.NewService(ordersRepo, dbClient, idem, logg)
	requireResource(ctx, logg, "ingest service", err)

	router := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		Readiness:        readiness,
		DashboardService: dashboardService,
		OrdersService:    ordersService,
		IngestService:    ingestService,
		Registry:         registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
		logg.Info(runCtx, "api server stopped")
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
