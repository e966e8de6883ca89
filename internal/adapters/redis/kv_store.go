package redis_adapter

import (
	"context"
	"errors"
	"fmt"
	"property-explorer/internal/core/port"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore - KeyValueStore поверх Redis. Все ключи получают общий префикс,
// чтобы не смешиваться с чужими данными в той же базе.
type RedisKVStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

var _ port.KeyValueStore = (*RedisKVStore)(nil)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedisKVStore - ttl ограничивает жизнь ключей в Redis (0 - без срока).
// Кэш все равно проверяет свой TTL сам, здесь это лишь уборка мусора.
func NewRedisKVStore(client *redis.Client, namespace string, ttl time.Duration) *RedisKVStore {
	if namespace == "" {
		namespace = "property-explorer:"
	}
	return &RedisKVStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET: %w", err)
	}
	return v, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.namespace+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.namespace+key).Err(); err != nil {
		return fmt.Errorf("redis DEL: %w", err)
	}
	return nil
}

// Keys обходит пространство через SCAN, KEYS на больших базах блокирует Redis.
func (s *RedisKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.namespace + escapeGlob(prefix) + "*"
	keys := make([]string, 0)

	iter := s.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.namespace):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis SCAN: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisKVStore) Close() error { return s.client.Close() }

func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
