package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/item-service/internal/config"
	"github.com/Sternrassler/item-service/pkg/logging"
	"github.com/Sternrassler/item-service/pkg/store"
)

// openStore creates the configured store. The returned close function
// releases its connections.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}

		logger := logging.NewLogger("store")
		logger.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Connected to Redis")
		return store.NewRedisStore(redisClient, cfg.KeyPrefix), redisClient.Close, nil

	default:
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
}
