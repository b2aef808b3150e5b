package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisKV is the subset of the go-redis client the repository uses.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStateRepository stores each key as a plain redis string, using
// the key TTL for expiry.
type RedisStateRepository struct {
	client  RedisKV
	prefix  string
	log     *logrus.Logger
	nowFunc func() time.Time
}

func NewRedisStateRepository(client RedisKV, logger *logrus.Logger) *RedisStateRepository {
	return &RedisStateRepository{
		client:  client,
		prefix:  "storefront:",
		log:     logger,
		nowFunc: time.Now,
	}
}

func (r *RedisStateRepository) key(k string) string {
	return r.prefix + k
}

func (r *RedisStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		r.log.Errorf("Redis state load failed for key %s: %v", key, err)
		return nil, fmt.Errorf("could not load state %q: %w", key, err)
	}
	return val, nil
}

func (r *RedisStateRepository) Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(r.nowFunc())
		if ttl <= 0 {
			return r.Delete(ctx, key)
		}
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.log.Errorf("Redis state save failed for key %s: %v", key, err)
		return fmt.Errorf("could not save state %q: %w", key, err)
	}
	return nil
}

func (r *RedisStateRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.log.Errorf("Redis state delete failed for key %s: %v", key, err)
		return fmt.Errorf("could not delete state %q: %w", key, err)
	}
	return nil
}
