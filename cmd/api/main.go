package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/devrecs/devrecs-backend/api/routes"
	"github.com/devrecs/devrecs-backend/internal/attribution"
	"github.com/devrecs/devrecs-backend/internal/clicks"
	"github.com/devrecs/devrecs-backend/internal/earnings"
	"github.com/devrecs/devrecs-backend/internal/revenue"
	"github.com/devrecs/devrecs-backend/pkg/bigquery"
	"github.com/devrecs/devrecs-backend/pkg/config"
	"github.com/devrecs/devrecs-backend/pkg/db"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/metrics"
	"github.com/devrecs/devrecs-backend/pkg/migrate"
	"github.com/devrecs/devrecs-backend/pkg/outbox"
	"github.com/devrecs/devrecs-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var bqClient *bigquery.Client
	if cfg.Earnings.RevenueSource == config.RevenueSourceAdReports {
		bqClient, err = bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery client", err)
			}
		}()
	}

	estimator, err := revenue.NewFromConfig(cfg.Earnings, bqClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create revenue estimator", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	clicksService, err := clicks.NewService(
		clicks.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create clicks service", err)
		os.Exit(1)
	}

	earningsService, err := earnings.NewService(
		earnings.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		logg,
		cfg.Earnings,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create earnings service", err)
		os.Exit(1)
	}

	engine, err := attribution.NewEngine(
		attribution.NewRepository(dbClient.DB()),
		estimator,
		earningsService,
		logg,
		metrics.NewSweepMetrics(prometheus.DefaultRegisterer),
		cfg.Earnings,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create attribution engine", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Clicks:      clicksService,
			Earnings:    earningsService,
			Attribution: engine,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
