package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier is a durable tier stored in a Redis database.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
	closed atomic.Bool
}

// RedisOption configures a RedisTier.
type RedisOption func(*RedisTier)

// WithTTL expires every key ttl after its last write. Zero keeps keys
// forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(t *RedisTier) {
		t.ttl = ttl
	}
}

// OpenRedis connects to cfg.RedisAddr and verifies the connection.
func OpenRedis(ctx context.Context, cfg Config, opts ...RedisOption) (*RedisTier, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis: address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.RedisAddr, err)
	}

	return NewRedisTier(client, opts...), nil
}

// NewRedisTier wraps an existing client.
func NewRedisTier(client *redis.Client, opts ...RedisOption) *RedisTier {
	t := &RedisTier{client: client}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get retrieves a value by key.
func (t *RedisTier) Get(ctx context.Context, key string) (string, error) {
	if t.closed.Load() {
		return "", ErrClosed
	}
	v, err := t.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get: %w", err)
	}
	return v, nil
}

// Set stores a key-value pair.
func (t *RedisTier) Set(ctx context.Context, key, value string) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := t.client.Set(ctx, key, value, t.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (t *RedisTier) Delete(ctx context.Context, key string) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := t.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: del: %w", err)
	}
	return nil
}

// Keys lists every key starting with prefix.
func (t *RedisTier) Keys(ctx context.Context, prefix string) ([]string, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	iter := t.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan: %w", err)
	}
	return keys, nil
}

// Close closes the client.
func (t *RedisTier) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.client.Close()
}
