// Package cache provides the key-value client the task cache layer sits on.
// Two drivers exist: "redis" for deployments with a Redis instance and
// "memory" for local development and tests.
package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/mfcoelho/go-todo-api/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

// Client is the minimal key-value contract the application depends on.
// Del must be idempotent: deleting an absent key succeeds.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// New builds the client selected by cfg.Cache.Driver and verifies
// connectivity before returning.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.Cache.Driver {
	case "redis":
		return newRedisClient(ctx, cfg)
	case "memory":
		return newMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Cache.Driver)
	}
}

type redisClient struct {
	rdb *redis.Client
}

func newRedisClient(ctx context.Context, cfg *config.Config) (*redisClient, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Cache.Host, cfg.Cache.Port),
		Password: cfg.Cache.Password,
		DB:       0,
	}

	// Managed Redis instances require TLS when a password is set
	if cfg.Cache.Password != "" {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(options)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisClient{rdb: rdb}, nil
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *redisClient) Del(ctx context.Context, key string) error {
	// DEL of a missing key is a no-op in Redis, which gives us idempotence
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}

type memoryClient struct {
	store *gocache.Cache
}

func newMemoryClient() *memoryClient {
	return &memoryClient{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (c *memoryClient) Get(_ context.Context, key string) (string, error) {
	val, ok := c.store.Get(key)
	if !ok {
		return "", ErrMiss
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("memory cache: unexpected value type for %s", key)
	}
	return s, nil
}

func (c *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *memoryClient) Del(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *memoryClient) Close() error {
	return nil
}
