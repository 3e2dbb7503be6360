package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockPOS-api/internal/application/ports"
	"github.com/jhoicas/StockPOS-api/internal/domain"
)

var _ ports.ProductLocker = (*ProductLocker)(nil)

const lockRetryInterval = 50 * time.Millisecond

// ProductLocker candado distribuido "stock:<id>" sobre redislock.
type ProductLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewProductLocker(rdb redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *ProductLocker {
	return &ProductLocker{locker: redislock.New(rdb), ttl: ttl, log: log}
}

func lockKey(productID string) string { return "stock:" + productID }

// Lock reintenta hasta que expira el TTL; si no lo consigue devuelve ErrConflict.
func (l *ProductLocker) Lock(ctx context.Context, productID string) (func(), error) {
	attempts := int(l.ttl / lockRetryInterval)
	lock, err := l.locker.Obtain(ctx, lockKey(productID), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryInterval), attempts),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("producto %s bloqueado: %w", productID, domain.ErrConflict)
	}
	if err != nil {
		return nil, domain.Persistence("redisx.Lock", err)
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("product_id", productID).Msg("no se pudo liberar el candado")
		}
	}, nil
}
