package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hr-service/internal/api/http"
	"github.com/spec-kit/hr-service/internal/api/http/handlers"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/crypto/fieldcipher"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/mail"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/persistence"
	"github.com/spec-kit/hr-service/internal/presence"
	"github.com/spec-kit/hr-service/internal/repository"
	"github.com/spec-kit/hr-service/internal/service"
	"github.com/spec-kit/hr-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	cipher, err := fieldcipher.New(cfg.Encryption, logger)
	if err != nil {
		logger.Fatal("failed to init field cipher", zap.Error(err))
	}

	pool := pg.PoolHandle()
	employeeRepo := repository.NewEmployeeRepository(pool, cipher)
	customerRepo := repository.NewCustomerRepository(pool, cipher)
	sessionRepo := repository.NewSessionRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	presenceStore := presence.NewStore(redis.Client)
	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())

	creds := service.NewCredentialStore(employeeRepo, customerRepo, cfg.Auth.BcryptCost)
	sessionService := service.NewSessionService(service.SessionDependencies{
		Credentials: creds,
		SessionRepo: sessionRepo,
		Employees:   employeeRepo,
		Customers:   customerRepo,
		Presence:    presenceStore,
		Tokens:      tokenMgr,
		Dispatcher:  dispatcher,
	}, cfg.Auth.SessionTTL(), logger)
	resetService := service.NewPasswordResetService(creds, resetRepo, cipher, dispatcher, cfg.Auth.PasswordResetTTL(), logger)

	sender := mail.NewSMTPSender(cfg.SMTP, logger)
	var mailSender mail.Sender
	if sender != nil {
		mailSender = sender
	}
	notificationService := service.NewNotificationService(dispatcher, mailSender, cfg.App, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(tokenMgr)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(sessionService, cfg, metrics),
		Password:       handlers.NewPasswordHandler(resetService, creds, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
