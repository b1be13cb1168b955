package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/robalobadob/matchstick/internal/game"
)

// RedisStore keeps games as JSON strings with a sliding TTL. Every Get
// decodes a fresh *game.Game, so concurrent writers to one game are
// last-writer-wins.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore returns a Redis-backed Store. An empty keyPrefix defaults
// to "ms:"; ttl of zero stores without expiry.
func NewRedisStore(client redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil for RedisStore")
	}
	if keyPrefix == "" {
		keyPrefix = "ms:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisStore) gameKey(id string) string {
	return fmt.Sprintf("%sgame:%s", r.keyPrefix, id)
}

// Save writes g and refreshes its TTL.
func (r *RedisStore) Save(ctx context.Context, g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("redis: marshal game %s: %w", g.ID, err)
	}
	if err := r.client.Set(ctx, r.gameKey(g.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis: save game %s: %w", g.ID, err)
	}
	return nil
}

// Get loads and decodes a game. A missing key maps to ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, id string) (*game.Game, error) {
	data, err := r.client.Get(ctx, r.gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("redis: get game %s: %w", id, err)
	}
	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("redis: decode game %s: %w", id, err)
	}
	return &g, nil
}
