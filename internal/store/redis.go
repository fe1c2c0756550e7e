package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-live/internal/game"
)

// RedisStore keeps the snapshot as a JSON blob under one key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "trivia:session"
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the snapshot key; (nil, nil) when unset.
func (s *RedisStore) Load(ctx context.Context) (*game.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap game.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// Save overwrites the snapshot key. No TTL: the snapshot is the durable
// truth clients re-sync against.
func (s *RedisStore) Save(ctx context.Context, snap game.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}
