package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSessionStorage keeps the per-browser session records. Every browser
// gets its own key namespace, see ForClient.
type RedisSessionStorage struct {
	client *redis.Client
	log    *zap.SugaredLogger
	ttl    time.Duration
	prefix string
}

func NewSessionRedisStorage(client *redis.Client, log *zap.SugaredLogger, ttl time.Duration) *RedisSessionStorage {
	return &RedisSessionStorage{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// ForClient returns a view of the storage scoped to one client id.
func (r *RedisSessionStorage) ForClient(clientID string) *RedisSessionStorage {
	scoped := *r
	scoped.prefix = "client:" + clientID + ":"
	return &scoped
}

func (r *RedisSessionStorage) key(k string) string {
	return r.prefix + k
}

func (r *RedisSessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		r.log.Errorf("redis get %s: %v", r.key(key), err)
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (r *RedisSessionStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		r.log.Errorf("redis set %s: %v", r.key(key), err)
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisSessionStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		r.log.Errorf("redis del %v: %v", full, err)
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
