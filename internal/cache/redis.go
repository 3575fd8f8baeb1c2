package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"essay-hub/internal/config"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient builds a client from either a host:port address or a
// redis:// URL and pings the server.
func NewRedisClient(redisCfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redisOptions(redisCfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opt.Addr, err)
	}
	return client, nil
}

func redisOptions(redisCfg config.RedisConfig) (*redis.Options, error) {
	if redisCfg.Address == "" {
		return nil, fmt.Errorf("redis configuration is missing or address is empty")
	}
	if strings.HasPrefix(redisCfg.Address, "redis://") || strings.HasPrefix(redisCfg.Address, "rediss://") {
		opt, err := redis.ParseURL(redisCfg.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}
	return &redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}, nil
}
