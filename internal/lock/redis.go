package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "stockroom:lock:"

// Redis guards keys across processes sharing one Redis instance.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	return &Redis{
		client: redislock.New(rdb),
		ttl:    ttl,
		log:    log,
	}
}

func (r *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	held := make([]*redislock.Lock, 0, len(keys))

	release := func() {
		// Release must run even when the caller's context is already done.
		ctx := context.Background()

		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.log.Warn("failed to release lock", zap.String("key", held[i].Key()), zap.Error(err))
			}
		}
	}

	for _, k := range ordered(keys) {
		l, err := r.client.Obtain(ctx, keyPrefix+k, r.ttl, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(50 * time.Millisecond),
		})
		if err != nil {
			release()

			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, fmt.Errorf("lock %s busy: %w", k, err)
			}

			return nil, fmt.Errorf("obtaining lock %s: %w", k, err)
		}

		held = append(held, l)
	}

	return release, nil
}
