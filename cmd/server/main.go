package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/teamboard/api/handler"
	"github.com/fastygo/teamboard/internal/config"
	"github.com/fastygo/teamboard/internal/infrastructure/monitor"
	"github.com/fastygo/teamboard/internal/infrastructure/notify"
	"github.com/fastygo/teamboard/internal/infrastructure/outbox"
	pgInfra "github.com/fastygo/teamboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/teamboard/internal/infrastructure/redis"
	"github.com/fastygo/teamboard/internal/middleware"
	"github.com/fastygo/teamboard/internal/router"
	"github.com/fastygo/teamboard/internal/services"
	"github.com/fastygo/teamboard/internal/services/lifecycle"
	"github.com/fastygo/teamboard/pkg/httpcontext"
	"github.com/fastygo/teamboard/pkg/logger"
	"github.com/fastygo/teamboard/repository/postgres"
	redisRepo "github.com/fastygo/teamboard/repository/redis"
	activityUC "github.com/fastygo/teamboard/usecase/activity"
	authUC "github.com/fastygo/teamboard/usecase/auth"
	badgeUC "github.com/fastygo/teamboard/usecase/badge"
	pointsUC "github.com/fastygo/teamboard/usecase/points"
	profileUC "github.com/fastygo/teamboard/usecase/profile"
	statsUC "github.com/fastygo/teamboard/usecase/stats"
	taskUC "github.com/fastygo/teamboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Warn("JWT_SECRET is empty, tokens are signed with an empty key")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	outboxStore, err := outbox.Open(cfg.Outbox.Path)
	if err != nil {
		zapLogger.Fatal("failed to open notification outbox", zap.Error(err))
	}
	manager.RegisterCloser("outbox_store", outboxStore)

	mon := monitor.New(pool, redisClient, outboxStore, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.RegisterStop("monitor", mon.Stop)

	var sender notify.Sender = notify.NewLogSender(zapLogger.Named("notify"))
	if cfg.Notify.WebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	}
	notifications := services.NewNotificationOutbox(
		outboxStore,
		sender,
		mon,
		zapLogger,
		services.OutboxConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
			Retention:  cfg.OutboxRetention(),
		},
	)
	notifications.Start()
	manager.Register("notification_outbox", func(ctx context.Context) error {
		notifications.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	pointsRepo := postgres.NewPointsRepository(pool)
	badgeRepo := postgres.NewBadgeRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	rankingCache := redisRepo.NewRankingCache(redisClient, cfg.Ranking.CacheTTL)

	recorder := activityUC.New(activityRepo, zapLogger)
	ledger := pointsUC.NewLedger(pointsRepo, rankingCache, zapLogger)
	evaluator := badgeUC.New(badgeRepo, statsRepo, zapLogger)
	if _, err := evaluator.EnsureCatalog(appCtx); err != nil {
		zapLogger.Fatal("badge catalog seeding failed", zap.Error(err))
	}

	tokens := authUC.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	authUseCase := authUC.New(userRepo, sessionRepo, tokens, authUC.Options{
		SessionTTL: cfg.Session.TTL,
		BcryptCost: cfg.Session.BcryptCost,
	}, zapLogger)
	if cfg.Bootstrap.AdminEmail != "" {
		admin, created, err := authUseCase.EnsureAdmin(appCtx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName)
		if err != nil {
			zapLogger.Fatal("admin bootstrap failed", zap.Error(err))
		}
		zapLogger.Info("admin account ready", zap.Int64("user_id", admin.ID), zap.Bool("created", created))
	}

	profileUseCase := profileUC.New(userRepo, badgeRepo, pointsRepo, zapLogger)
	pointsUseCase := pointsUC.New(ledger, evaluator, recorder, notifications, zapLogger)
	statsUseCase := statsUC.New(statsRepo, rankingCache, zapLogger)
	taskUseCase := taskUC.New(taskUC.Deps{
		Tasks:    taskRepo,
		Comments: commentRepo,
		Users:    userRepo,
		Ledger:   ledger,
		Badges:   evaluator,
		Activity: recorder,
		Notifier: notifications,
		Cache:    rankingCache,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Points:  apiHandler.NewPointsHandler(pointsUseCase, ledger, evaluator, ctxAdapter, zapLogger),
		Stats:   apiHandler.NewStatsHandler(statsUseCase, recorder, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{
		EnableMetrics: cfg.HTTP.EnableMetrics,
		EnablePprof:   cfg.HTTP.EnablePprof,
	})

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
