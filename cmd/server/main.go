package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"JobReach/internal/api"
	"JobReach/internal/batch"
	"JobReach/internal/config"
	"JobReach/internal/cron"
	"JobReach/internal/email"
	"JobReach/internal/metrics"
	"JobReach/internal/store"
)

func main() {

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Recipient Store
	// ------------------------------------------------
	var st store.Store
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("schema setup failed", zap.Error(err))
		}
		if seeded, err := pg.SeedFromCSV(ctx, cfg.CSVPath); err != nil {
			logger.Warn("csv seed skipped", zap.Error(err))
		} else if seeded > 0 {
			logger.Info("recipients seeded from csv", zap.Int("count", seeded))
		}
		st = pg
	case "memory":
		st = store.NewMemory()
	default:
		st = store.NewCSV(cfg.CSVPath)
	}

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Email Sender
	// ------------------------------------------------
	sender := &email.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	// ------------------------------------------------
	// Batch Runner (rate-limited, sequential)
	// ------------------------------------------------
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)

	runner := &batch.Runner{
		Store:    st,
		Notifier: sender,
		Limiter:  limiter,
		Log:      logger,
	}

	// ------------------------------------------------
	// Scheduler
	// ------------------------------------------------
	scheduler := cron.New(runner.Run, st, logger)

	cronCfg := cron.Config{
		IntervalMode: cfg.CronIntervalMode,
		Expression:   cfg.CronSchedule,
		IntervalDays: cfg.CronIntervalDays,
		Hour:         cfg.CronHour,
		Minute:       cfg.CronMinute,
	}

	if cfg.CronAutoStart {
		if err := scheduler.Start(cronCfg); err != nil {
			logger.Error("failed to auto-start schedule", zap.Error(err))
		}
	}

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Store:       st,
		Runner:      runner,
		Scheduler:   scheduler,
		DefaultCron: cronCfg,
		Secret:      cfg.CronSecret,
		Log:         logger,
	}

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /send", apiHandler.SendEmails)
	apiMux.HandleFunc("GET /data", apiHandler.ViewData)
	apiMux.HandleFunc("POST /update-status", apiHandler.UpdateStatus)
	apiMux.HandleFunc("GET /logs", apiHandler.Logs)
	apiMux.HandleFunc("POST /cron/start", apiHandler.CronStart)
	apiMux.HandleFunc("POST /cron/stop", apiHandler.CronStop)
	apiMux.HandleFunc("GET /cron/status", apiHandler.CronStatus)
	apiMux.HandleFunc("GET /cron/logs", apiHandler.CronLogs)

	apiServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: apiMux,
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}
