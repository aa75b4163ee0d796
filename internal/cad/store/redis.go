package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cad-editor/internal/cad/codec"
	"cad-editor/internal/cad/models"
)

const DefaultRedisPrefix = "cad:doc:"

// RedisStore keeps each document as one deterministic CBOR value.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis returns nil when no address is configured.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) Raw(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("document %s: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*models.Document, error) {
	data, err := s.Raw(ctx, name)
	if err != nil {
		return nil, err
	}
	return codec.UnmarshalCBOR(data)
}

func (s *RedisStore) Save(ctx context.Context, name string, doc *models.Document) error {
	data, err := codec.MarshalCBOR(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
