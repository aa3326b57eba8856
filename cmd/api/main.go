package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/telegram-support/internal/api/http"
	"github.com/spec-kit/telegram-support/internal/api/http/handlers"
	"github.com/spec-kit/telegram-support/internal/config"
	"github.com/spec-kit/telegram-support/internal/dedup"
	"github.com/spec-kit/telegram-support/internal/observability"
	"github.com/spec-kit/telegram-support/internal/persistence"
	"github.com/spec-kit/telegram-support/internal/queue"
	"github.com/spec-kit/telegram-support/internal/repository"
	"github.com/spec-kit/telegram-support/internal/service"
	"github.com/spec-kit/telegram-support/internal/telegram"
	"github.com/spec-kit/telegram-support/internal/worker"
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

	metrics := observability.NewMetrics()

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

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketEventRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	typeRepo := repository.NewTicketTypeRepository(pool)

	bootstrap := service.NewBootstrapService(typeRepo, logger)
	if err := bootstrap.EnsureTelegramChatType(ctx); err != nil {
		logger.Fatal("failed to ensure telegram chat ticket type", zap.Error(err))
	}

	sender, err := telegram.NewSender(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Fatal("failed to create telegram sender", zap.Error(err))
	}

	deduplicator := dedup.NewRedisDeduplicator(redis.Client, cfg.Support.DedupTTL(), logger)
	dispatcher := queue.NewInMemoryDispatcher(logger)
	retry := service.NewRetryScheduler(dispatcher, logger, metrics)

	inboundService := service.NewInboundService(service.InboundDependencies{
		TicketRepo:  ticketRepo,
		AccountRepo: accountRepo,
		Dedup:       deduplicator,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
		Support:     cfg.Support,
		BotCommands: cfg.Telegram.BotCommands,
	})

	outboundService := service.NewOutboundService(service.OutboundDependencies{
		TicketRepo: ticketRepo,
		Sender:     sender,
		Dedup:      deduplicator,
		Retry:      retry,
		Logger:     logger,
		Metrics:    metrics,
		RetryDelay: cfg.Support.RetryDelay(),
	})

	worker.StartBridgeWorkers(dispatcher, inboundService, outboundService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	metricsHandler := handlers.NewMetricsHandler(metrics)
	webhookHandler := handlers.NewWebhookHandler(dispatcher, logger, cfg.Telegram.WebhookSecret, cfg.Telegram.BotCommands)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Metrics: metricsHandler,
		Webhook: webhookHandler,
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
