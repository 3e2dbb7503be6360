package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options conexión a Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect abre el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
