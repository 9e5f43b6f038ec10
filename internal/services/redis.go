package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisContextStore keeps each console session's document context in Redis
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisContextStore connects and pings with a short timeout.
func NewRedisContextStore(redisURL string, ttl time.Duration) (*RedisContextStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	slog.Info("redis connection established")
	return NewRedisContextStoreFromClient(client, ttl), nil
}

func NewRedisContextStoreFromClient(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func contextKey(sessionID string) string {
	return "console:document-context:" + sessionID
}

// DocumentContext returns the raw stored value; ok is false when nothing is stored.
func (s *RedisContextStore) DocumentContext(ctx context.Context, sessionID string) (string, bool, error) {
	raw, err := s.client.Get(ctx, contextKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get document context: %w", err)
	}
	return raw, true, nil
}

func (s *RedisContextStore) SetDocumentContext(ctx context.Context, sessionID, raw string) error {
	return s.client.Set(ctx, contextKey(sessionID), raw, s.ttl).Err()
}

func (s *RedisContextStore) ClearDocumentContext(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, contextKey(sessionID)).Err()
}

func (s *RedisContextStore) Close() error {
	return s.client.Close()
}
