package users

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV adapts *redis.Client to the kv facade used for session and
// activation tokens.
type RedisKV struct{ R *redis.Client }

func (k RedisKV) SetTTL(ctx context.Context, key, val string, ttl time.Duration) error {
	return k.R.Set(ctx, key, val, ttl).Err()
}

func (k RedisKV) Get(ctx context.Context, key string) (string, error) {
	return k.R.Get(ctx, key).Result()
}

func (k RedisKV) Del(ctx context.Context, key string) error {
	return k.R.Del(ctx, key).Err()
}
