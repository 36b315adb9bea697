package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/preschool-adp-api/pkg/config"
)

const keyPrefix = "preschool"

// NewRedis returns a configured Redis client. An empty host means the cache
// is not deployed and nil is returned without error.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         Addr(cfg),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Addr joins host and port.
func Addr(cfg config.RedisConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// Key namespaces a cache key so several services can share one Redis database.
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}
