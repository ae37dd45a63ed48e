package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gperojohn83-art/Construction/internal/cache"
	"github.com/gperojohn83-art/Construction/internal/config"
	"github.com/gperojohn83-art/Construction/internal/database"
	"github.com/gperojohn83-art/Construction/internal/jobs"
	"github.com/gperojohn83-art/Construction/internal/log"
	"github.com/gperojohn83-art/Construction/internal/queue"
	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/service"
	"github.com/gperojohn83-art/Construction/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	location, err := time.LoadLocation(cfg.Locale.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Locale.Timezone).Msg("invalid timezone")
	}

	memberships := repository.NewMembershipRepository(dbPool)
	notifier := service.NewNotificationService(repository.NewNotificationRepository(dbPool), memberships)
	maintenance := service.NewMaintenanceService(
		repository.NewFinanceRepository(dbPool),
		repository.NewOrganizationRepository(dbPool),
		repository.NewSessionRepository(dbPool),
		repository.NewInvitationRepository(dbPool),
		notifier,
		logger,
	)

	processor := tasks.NewProcessor(maintenance, notifier, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	scheduler := jobs.NewScheduler(queue.NewProducer(client, cfg.Worker.Stream), location, jobs.DefaultSchedules(), logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler start failed")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-scheduler.Stop().Done():
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("scheduled jobs still running at shutdown")
	}
	<-done
}
