package cache

import (
	"context"
	"errors"
	"time"

	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "beavertail_cart"

// RedisCartRepo keeps each cart as one string key holding the JSON mapping.
type RedisCartRepo struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCartRepo(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCartRepo {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCartRepo{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisCartRepo) key(session string) string {
	return r.prefix + ":" + session
}

func (r *RedisCartRepo) Load(ctx context.Context, session string) ([]byte, error) {
	val, err := r.rdb.Get(ctx, r.key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Save rewrites the entry; a zero ttl keeps it forever.
func (r *RedisCartRepo) Save(ctx context.Context, session string, data []byte) error {
	return r.rdb.Set(ctx, r.key(session), data, r.ttl).Err()
}

var _ usecase.CartStateRepo = (*RedisCartRepo)(nil)
