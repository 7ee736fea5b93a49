// Package redis_client owns the Redis connection backing the prediction
// cache.
package redis_client

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
)

var Client *redis.Client

func Connect(cfg config.RedisConfig) error {
	Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	return Client.Ping(context.Background()).Err()
}
