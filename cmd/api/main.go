package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/loan-portal/internal/api/http"
	"github.com/spec-kit/loan-portal/internal/api/http/handlers"
	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/config"
	"github.com/spec-kit/loan-portal/internal/events"
	"github.com/spec-kit/loan-portal/internal/observability"
	"github.com/spec-kit/loan-portal/internal/persistence"
	"github.com/spec-kit/loan-portal/internal/repository"
	"github.com/spec-kit/loan-portal/internal/service"
	"github.com/spec-kit/loan-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	sessionRepo := repository.NewRedisSessionRepository(redis.Handle())

	customerService := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: repository.NewCustomerRepository(pg.PoolHandle()),
		Cache:        repository.NewRedisCustomerCache(redis.Handle(), cfg.Cache.CustomerTTL()),
		Metrics:      metrics,
		Logger:       logger,
	})
	loanService := service.NewLoanService(service.LoanDependencies{
		Customers:  customerService,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Provider:    auth.NewOIDCClient(cfg.OIDC),
		SessionRepo: sessionRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessionRepo, cfg.Auth.CookieName)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			handlers.Dependency{Name: "postgres", Pinger: pg},
			handlers.Dependency{Name: "redis", Pinger: redis},
		),
		Auth:           handlers.NewAuthHandler(authService, auth.NewCookieJar(cfg.Auth), cfg.OIDC.RedirectURI),
		Customers:      handlers.NewCustomersHandler(customerService),
		Loans:          handlers.NewLoansHandler(loanService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
		LoanLimit:      httptransport.LoanEvaluationLimiter(cfg.RateLimit.LoanEvaluationsPerMinute),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
