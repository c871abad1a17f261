package blob

import (
	"context"
	"errors"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("blob not found")

// Object is a stored payload with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// RedisStore keeps each blob in a hash under prefix:key.
type RedisStore struct {
	client *redisv9.Client
	prefix string
}

func NewRedisStore(client *redisv9.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "blob"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := s.client.HSet(ctx, s.key(key), "data", data, "content_type", contentType).Err(); err != nil {
		return fmt.Errorf("redis put blob failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Object, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get blob failed: %w", err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{Data: []byte(data), ContentType: fields["content_type"]}, nil
}

// Delete is idempotent.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete blob failed: %w", err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}
