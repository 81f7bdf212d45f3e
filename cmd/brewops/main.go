package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/brewops/brewops/cmd/brewops/cli"
	"github.com/brewops/brewops/internal/app"
	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/deliveries"
	"github.com/brewops/brewops/internal/inventory"
	"github.com/brewops/brewops/internal/messages"
	"github.com/brewops/brewops/internal/notifications"
	"github.com/brewops/brewops/internal/observability"
	"github.com/brewops/brewops/internal/platform/cache"
	"github.com/brewops/brewops/internal/platform/db"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/settlement"
	"github.com/brewops/brewops/internal/suppliers"
	"github.com/brewops/brewops/internal/users"
	"github.com/brewops/brewops/jobs"
)

const usage = `usage: brewops [serve|migrate|jobs <remind [YYYY-MM]|stats|scheduled [n]>]`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "migrate":
		err = db.Migrate(ctx, cfg.PGDSN)
		if err == nil {
			logger.Info("migrations applied")
		}
	case "jobs":
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd, slog.Any("error", err))
		os.Exit(1)
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	redisOpts := cache.Options{Addr: cfg.RedisAddr}.AsynqOpt()
	client := jobs.NewClient(redisOpts)
	defer client.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	return cli.NewJobsCLI(client, inspector).Run(ctx, args, os.Stdout)
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{
		MaxConns:         cfg.PGMaxConns,
		ConnectTimeout:   cfg.PGConnectTimeout,
		StatementTimeout: cfg.PGStatementTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCfg := cache.Options{Addr: cfg.RedisAddr}
	redisClient, err := cache.New(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(redisCfg.AsynqOpt())
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisCfg.AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	rbacService := rbac.NewService()
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	revocations := auth.NewRedisRevocations(redisClient)
	authn := auth.Middleware{Tokens: tokens, Revocations: revocations, Logger: logger}
	authService := auth.NewService(auth.NewRepository(pool), tokens, revocations, logger)

	supplierService := suppliers.NewService(suppliers.NewRepository(pool), logger, cfg.DefaultSupplierRate)
	deliveryService := deliveries.NewService(deliveries.NewRepository(pool), logger, deliveries.ServiceConfig{Currency: cfg.CurrencyCode})
	paymentService := settlement.NewService(settlement.NewRepository(pool), settlement.ServiceConfig{
		Publisher: jobClient,
		Metrics:   settlement.NewMetrics(metrics.Registerer()),
		Logger:    logger,
	})
	inventoryService := inventory.NewService(inventory.NewRepository(pool), logger, nil)
	userService := users.NewService(users.NewRepository(pool), logger)
	notificationService := notifications.NewService(notifications.NewRepository(pool), logger)
	messageService := messages.NewService(messages.NewRepository(pool), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		DB:                   pool,
		Metrics:              metrics,
		Authn:                authn,
		AuthHandler:          auth.NewHandler(logger, authService, authn, rbacMiddleware),
		PermissionsHandler:   rbac.NewPermissionsHandler(rbacService, rbacMiddleware),
		SuppliersHandler:     suppliers.NewHandler(logger, supplierService, rbacMiddleware),
		DeliveriesHandler:    deliveries.NewHandler(logger, deliveryService, rbacMiddleware),
		PaymentsHandler:      settlement.NewHandler(logger, paymentService, rbacMiddleware, cfg.CurrencyCode),
		InventoryHandler:     inventory.NewHandler(logger, inventoryService, rbacMiddleware),
		UsersHandler:         users.NewHandler(logger, userService, rbacMiddleware),
		ProfileHandler:       users.NewProfileHandler(logger, userService),
		NotificationsHandler: notifications.NewHandler(logger, notificationService, rbacMiddleware),
		MessagesHandler:      messages.NewHandler(logger, messageService),
		JobHandler:           jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
