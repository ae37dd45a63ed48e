package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/config"
)

// NewRedisClient connects to redis, retrying the ping the same way the
// postgres pool does so the api and worker can start before redis is up.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.ReadTimeout,
	})

	attempts := max(cfg.ConnectAttempts, 1)
	b := &backoff.Backoff{Min: 250 * time.Millisecond, Max: 5 * time.Second, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return client, nil
		}
		if attempt == attempts {
			break
		}

		wait := b.Duration()
		logger.Warn().Err(lastErr).Str("addr", cfg.Addr).Int("attempt", attempt).Dur("retry_in", wait).Msg("redis not ready")
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis ping after %d attempts: %w", attempts, lastErr)
}
