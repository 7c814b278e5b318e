package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trogers1052/price-forecast-service/internal/api"
	"github.com/trogers1052/price-forecast-service/internal/cache"
	"github.com/trogers1052/price-forecast-service/internal/config"
	"github.com/trogers1052/price-forecast-service/internal/database"
	"github.com/trogers1052/price-forecast-service/internal/forecast"
	"github.com/trogers1052/price-forecast-service/internal/kafka"
	"github.com/trogers1052/price-forecast-service/internal/metrics"
	"github.com/trogers1052/price-forecast-service/internal/scheduler"
	"github.com/trogers1052/price-forecast-service/internal/service"
	"github.com/trogers1052/price-forecast-service/internal/upstream"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, price consumer and scheduled jobs",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply database migrations on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(cfg.Forecast)
	if err != nil {
		return err
	}
	reg := metrics.NewRegistry()
	client := newUpstream(cfg.Upstream)
	checks := map[string]api.HealthCheck{}

	deps := service.Deps{
		Series:   client,
		Metadata: client,
		Engine:   engine,
		Metrics:  reg,
	}

	// Postgres is only required when it is the history source
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		if cfg.Forecast.HistorySource == config.HistorySourcePostgres {
			return err
		}
		logrus.WithError(err).Warn("Database unavailable, running without price storage")
	}
	if db != nil {
		defer db.Close()
		if serveMigrate {
			if err := db.Migrate(cfg.Database.MigrationsDir); err != nil {
				return err
			}
		}
		deps.Recorder = db
		deps.Indicators = db
		checks["postgres"] = func(ctx context.Context) error { return db.Ping() }
		if cfg.Forecast.HistorySource == config.HistorySourcePostgres {
			deps.Series = service.NewStoreHistory(db, cfg.Forecast.HistoryDays)
			deps.Metadata = service.NewStoreMetadata(db, client)
		}
	}

	forecastCache, err := cache.New(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Forecast.CacheTTL,
	})
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, forecasts will not be cached")
	} else {
		defer forecastCache.Close()
		deps.Cache = forecastCache
		checks["redis"] = forecastCache.Ping
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ForecastTopic)
		defer producer.Close()
		deps.Publisher = producer
	}

	svc := service.NewForecastService(deps)

	if db != nil && len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.PriceTopic != "" {
		var invalidator kafka.ForecastInvalidator = noopInvalidator{}
		if forecastCache != nil {
			invalidator = forecastCache
		}
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PriceTopic, cfg.Kafka.GroupID, db, invalidator)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logrus.WithError(err).Error("Price consumer stopped")
			}
		}()
	}

	warmer := scheduler.NewWarmer(svc, cfg.Scheduler.WarmAssets, cfg.Scheduler.WarmTimeout, reg)
	if db != nil {
		warmer.SetWatchlist(db)
	}
	if cfg.Scheduler.WarmCron != "" {
		if err := warmer.Register(cfg.Scheduler.WarmCron); err != nil {
			return err
		}
	}
	if db != nil && cfg.Scheduler.RetentionCron != "" {
		if err := warmer.RegisterRetention(cfg.Scheduler.RetentionCron, db, cfg.Scheduler.RetentionDays); err != nil {
			return err
		}
	}
	warmer.Start()
	defer warmer.Stop()

	handler := api.NewHandler(svc, checks)
	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           api.SetupRoutes(handler, reg.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// noopInvalidator is used when no cache is configured
type noopInvalidator struct{}

func (noopInvalidator) Delete(context.Context, string) error { return nil }

func newEngine(fc config.ForecastConfig) (*forecast.Engine, error) {
	tuning, err := forecast.LoadTuning(fc.TuningFile)
	if err != nil {
		return nil, err
	}
	return forecast.NewEngine(forecast.WithTuning(tuning)), nil
}

func newUpstream(uc config.UpstreamConfig) *upstream.Client {
	return upstream.NewClient(upstream.Config{
		BaseURL: uc.BaseURL,
		Timeout: uc.Timeout,
		RPS:     uc.RPS,
	})
}
