package repository

import (
	"github.com/alicebob/miniredis/v2"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/types"
)

// NewRedisClientForTest creates a Redis client backed by miniredis for testing
func NewRedisClientForTest() (*common.RedisClient, error) {
	s, err := miniredis.Run()
	if err != nil {
		return nil, err
	}

	rdb, err := common.NewRedisClient(types.RedisConfig{
		Addrs: []string{s.Addr()},
	})
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewRedisKVForTest creates a RedisKV backed by miniredis for testing
func NewRedisKVForTest() (KeyValue, error) {
	rdb, err := NewRedisClientForTest()
	if err != nil {
		return nil, err
	}
	return NewRedisKV(rdb), nil
}
