package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"mentivio-widget/internal/config"
	ports "mentivio-widget/internal/domain/ports/storage"
)

// RedisClient narrows go-redis to the calls the persistent backend needs,
// so tests can swap in a fake.
type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

var _ RedisClient = (*redClient)(nil)

type redClient struct {
	cli *redis.Client
}

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redClient, error) {
	opts := &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redClient{cli: c}, nil
}

func (c *redClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *redClient) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *redClient) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *redClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return c.cli.Keys(ctx, pattern).Result()
}

func (c *redClient) Close() error { return c.cli.Close() }

var _ ports.Backend = (*RedisBackend)(nil)

// RedisBackend is the persistent scope. All keys live under a prefix so
// Clear only touches this widget instance's namespace.
type RedisBackend struct {
	client RedisClient
	prefix string
}

func NewRedisBackend(client RedisClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) key(k string) string { return r.prefix + ":" + k }

func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key))
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0)
}

func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key))
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, r.prefix+":*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...)
}

func (r *RedisBackend) Scope() ports.Scope { return ports.ScopePersistent }
