package common

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/involex/involex/pkg/types"
)

// RedisClient wraps a universal client so repositories and the event bus
// share one connection pool.
type RedisClient struct {
	redis.UniversalClient
}

func NewRedisClient(cfg types.RedisConfig) (*RedisClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		ClientName:   cfg.ClientName,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{UniversalClient: client}, nil
}

// Subscribe subscribes to a channel and exposes messages and terminal errors
// as channels. The subscription ends when ctx is cancelled.
func (r *RedisClient) Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, <-chan error) {
	sub := r.UniversalClient.Subscribe(ctx, channel)
	errs := make(chan error, 1)

	go func() {
		<-ctx.Done()
		errs <- ctx.Err()
		sub.Close()
	}()

	return sub.Channel(), errs
}
