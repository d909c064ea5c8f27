package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBackend stores each collection under its own redis key.
type RedisBackend struct {
	rdb *goredis.Client
}

// RedisOptions configures OpenRedisBackend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedisBackend connects and pings the server before returning.
func OpenRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if opts.Addr == "" {
		return nil, errors.New("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBackend{rdb: rdb}, nil
}

func (r *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Save wraps every SET in MULTI/EXEC.
func (r *RedisBackend) Save(ctx context.Context, entries map[string][]byte) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, key, value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.rdb.Close()
}
