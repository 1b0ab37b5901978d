package identity

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps the profile record under a single Redis key.
type RedisRepository struct {
	cache *redis.Client
	key   string
}

// NewRedisRepository builds a Redis-backed profile repository.
func NewRedisRepository(cache *redis.Client, key string) *RedisRepository {
	if key == "" {
		key = DefaultKey
	}
	return &RedisRepository{cache: cache, key: key}
}

// Load fetches the stored identity.
func (r *RedisRepository) Load(ctx context.Context) (Identity, error) {
	payload, err := r.cache.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	return decode(payload)
}

// Save overwrites the stored identity without expiry.
func (r *RedisRepository) Save(ctx context.Context, id Identity) error {
	payload, err := encode(id)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, r.key, payload, 0).Err()
}

// Delete removes the key.
func (r *RedisRepository) Delete(ctx context.Context) error {
	return r.cache.Del(ctx, r.key).Err()
}
