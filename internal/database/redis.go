package database

import (
	"context"

	"promptvault-backend/config"

	"github.com/go-redis/redis/v8"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis connects RedisClient. When no Redis host is configured the
// client stays nil and callers skip caching.
func ConnectRedis(cfg *config.Config) error {
	if !cfg.RedisEnabled() {
		RedisClient = nil
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	_, err := RedisClient.Ping(Ctx).Result()
	return err
}
