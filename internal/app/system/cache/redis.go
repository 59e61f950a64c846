// internal/app/system/cache/redis.go
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries in a shared Redis instance so every replica sees the
// same invalidations.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects using a redis:// URL and verifies the server responds.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) key(k Key) string {
	return r.prefix + k.String()
}

func (r *Redis) Get(ctx context.Context, k Key) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (r *Redis) Set(ctx context.Context, k Key, v []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key(k), v, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, k Key) error {
	return r.client.Del(ctx, r.key(k)).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Ping checks the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
