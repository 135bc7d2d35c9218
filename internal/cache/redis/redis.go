// Package redis implementa cache.Client sobre Redis (go-redis/v9).
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/opsdeck/garrison/internal/cache"
	goredis "github.com/redis/go-redis/v9"
)

type Redis struct {
	c      *goredis.Client
	prefix string
}

// Config para el backend redis.
type Config struct {
	Addr   string
	DB     int
	Prefix string
}

// New crea el cliente y verifica la conexión.
func New(ctx context.Context, cfg Config) (cache.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &Redis{c: c, prefix: cfg.Prefix}, nil
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, k string) (string, error) {
	v, err := r.c.Get(ctx, r.key(k)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, k, v string, ttl time.Duration) error {
	return r.c.Set(ctx, r.key(k), v, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, k string) error {
	return r.c.Del(ctx, r.key(k)).Err()
}

func (r *Redis) Close() error { return r.c.Close() }
