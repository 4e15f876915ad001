package cache

import (
	"context"
	"fmt"
	"time"

	"care-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}
	return client, nil
}

// CallbackGuard remembers payment callbacks that were already processed so a
// replayed callback is recognised.
type CallbackGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCallbackGuard(client *redis.Client, ttl time.Duration) *CallbackGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CallbackGuard{client: client, prefix: "payment:callback:", ttl: ttl}
}

// MarkOnce reports true the first time key is seen within the TTL.
func (g *CallbackGuard) MarkOnce(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark callback %s: %w", key, err)
	}
	return ok, nil
}

// Forget drops a mark so a callback whose processing failed can be retried.
func (g *CallbackGuard) Forget(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("forget callback %s: %w", key, err)
	}
	return nil
}
