package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/brewops/brewops/internal/app"
	jobmetrics "github.com/brewops/brewops/internal/jobs"
	"github.com/brewops/brewops/internal/notifications"
	"github.com/brewops/brewops/internal/observability"
	"github.com/brewops/brewops/internal/platform/cache"
	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/settlement"
	"github.com/brewops/brewops/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, db.Options{
		MaxConns:         cfg.PGMaxConns,
		ConnectTimeout:   cfg.PGConnectTimeout,
		StatementTimeout: cfg.PGStatementTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	registry := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(registry.Registerer())

	notificationService := notifications.NewService(notifications.NewRepository(pool), logger)
	paymentService := settlement.NewService(settlement.NewRepository(pool), settlement.ServiceConfig{Logger: logger})

	notifyJob := &jobs.SettlementNotifyJob{
		Notifier: notificationService,
		Currency: cfg.CurrencyCode,
		Logger:   logger,
		Metrics:  metrics,
	}
	reminderJob := jobs.NewMonthlyReminderJob(paymentService, notificationService, logger, metrics)

	reminderTask, err := jobs.NewMonthlyReminderTask(jobs.MonthlyReminderPayload{})
	if err != nil {
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cache.Options{Addr: cfg.RedisAddr}.AsynqOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSettlementRecorded, Handler: notifyJob.Handle},
			{Type: jobs.TaskMonthlyReminder, Handler: reminderJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.MonthlyReminderCron, Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           registry.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
