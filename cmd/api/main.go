package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/text/currency"

	"github.com/gperojohn83-art/Construction/internal/cache"
	"github.com/gperojohn83-art/Construction/internal/config"
	"github.com/gperojohn83-art/Construction/internal/database"
	"github.com/gperojohn83-art/Construction/internal/handlers"
	"github.com/gperojohn83-art/Construction/internal/log"
	"github.com/gperojohn83-art/Construction/internal/middleware"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/queue"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/server"
	"github.com/gperojohn83-art/Construction/internal/service"
	"github.com/gperojohn83-art/Construction/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	location, err := time.LoadLocation(cfg.Locale.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Locale.Timezone).Msg("invalid timezone")
	}
	unit, err := currency.ParseISO(cfg.Locale.Currency)
	if err != nil {
		logger.Fatal().Err(err).Str("currency", cfg.Locale.Currency).Msg("invalid currency")
	}

	users := repository.NewUserRepository(dbPool)
	sessions := repository.NewSessionRepository(dbPool)
	organizations := repository.NewOrganizationRepository(dbPool)
	memberships := repository.NewMembershipRepository(dbPool)
	invitations := repository.NewInvitationRepository(dbPool)
	projects := repository.NewProjectRepository(dbPool)
	finance := repository.NewFinanceRepository(dbPool)
	documents := repository.NewDocumentRepository(dbPool)
	notifications := repository.NewNotificationRepository(dbPool)

	producer := queue.NewProducer(redisClient, cfg.Worker.Stream)

	resolver := service.NewMembershipResolver(memberships, organizations)
	enricher := service.NewSessionEnricher(cfg.Security.JWTAccessSecret, cfg.Security.JWTAccessTTL)
	authService := service.NewAuthService(
		users,
		sessions,
		service.NewCredentialVerifier(users),
		resolver,
		enricher,
		cfg.Security,
		logger,
	)

	deps := handlers.Deps{
		Log:           logger,
		Environment:   cfg.Environment,
		Locale:        models.Locale(cfg.Locale.Default),
		Currency:      unit,
		Auth:          authService,
		Organizations: service.NewOrganizationService(organizations, resolver),
		Projects:      service.NewProjectService(projects, resolver, producer, logger),
		Documents: service.NewDocumentService(
			documents,
			projects,
			objectStore,
			resolver,
			producer,
			cfg.Security.SignatureSecret,
			cfg.Storage.MaxUploadBytes,
			logger,
		),
		Team:          service.NewTeamService(memberships, invitations, users, resolver, producer, cfg.Security.InvitationTTL, logger),
		Dashboard:     service.NewDashboardService(projects, finance, memberships, documents, notifications, location),
		Invoices:      service.NewInvoiceService(finance),
		Notifications: service.NewNotificationService(notifications, memberships),
		Health: map[string]handlers.HealthCheck{
			"postgres": dbPool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		Authenticate:   middleware.Auth(enricher, sessions, logger),
		Signature:      middleware.Signature(cfg.Security.SignatureSecret, cache.NewNonceStore(redisClient), logger),
		RateLimit:      middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware(),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}

	if cfg.OAuth.Google.Enabled {
		oauthConfig, verify, err := service.NewGoogleProvider(ctx, cfg.OAuth.Google)
		if err != nil {
			logger.Fatal().Err(err).Msg("google provider setup failed")
		}
		deps.Federated = service.NewFederatedService(authService, oauthConfig, verify, cache.NewStateStore(redisClient), cfg.OAuth.StateTTL)
	}

	httpServer := server.NewHTTPServer(cfg, logger, handlers.NewHandlerSet(deps))

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(ctx, logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(ctx context.Context, logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
