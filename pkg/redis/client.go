package redis

import (
	"planboard/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewClient builds the Redis client backing the analysis result cache.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
