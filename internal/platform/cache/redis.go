// Package cache provides the Redis-backed store for finished insights.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NewRedis connects to the server described by a redis:// URL and pings it.
func NewRedis(ctx context.Context, url string) (*goredis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps JSON-encoded values under prefix with a TTL. A zero ttl
// keeps them until evicted.
type RedisStore[T any] struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore[T any](rdb goredis.Cmdable, prefix string, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore[T]) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var v T
	data, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		// An undecodable entry behaves like a miss and is recomputed.
		return v, false, nil
	}
	return v, true, nil
}

func (s *RedisStore[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), data, s.ttl).Err()
}
