package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/involex/involex/pkg/common"
)

// RedisKV implements KeyValue on Redis string keys.
type RedisKV struct {
	rdb *common.RedisClient
}

func NewRedisKV(rdb *common.RedisClient) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := r.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
