package configstore

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the record keys.
const DefaultRedisPrefix = "door-sentry:"

// RedisStore keeps each record as a plain string key.
type RedisStore struct {
	// client talks to the Redis server.
	client *backend.Client
	// prefix is prepended to every record key.
	prefix string
}

// NewRedisStore connects to a Redis server.
func NewRedisStore(address, password string, db int, prefix string) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), prefix)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Read returns the record or "" when the key does not exist.
func (s *RedisStore) Read(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", nil
		}

		return "", fmt.Errorf("redis get: %w", err)
	}

	return val, nil
}

// Write stores the record without expiry.
func (s *RedisStore) Write(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Close releases the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
