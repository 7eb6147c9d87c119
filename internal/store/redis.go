package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore writes record content to a Redis-backed storefront cache tier.
// Keys are namespaced so unrelated dashboard data cannot collide.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store over an existing client. An empty prefix
// defaults to "record:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "record:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// UpdateContent writes content under the namespaced record key.
func (s *RedisStore) UpdateContent(ctx context.Context, id, content string) error {
	if id == "" {
		return fmt.Errorf("redis store: id is required")
	}
	if err := s.client.Set(ctx, s.prefix+id, content, 0).Err(); err != nil {
		return fmt.Errorf("redis store: update %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
