// Package ratelimit provides fixed-window request limiters keyed by an
// arbitrary string (usually route + client IP).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter reports whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count int
	start time.Time
}

// Memory is a process-local fixed-window limiter.
type Memory struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	windows map[string]*window
	now     func() time.Time
}

func NewMemory(max int, win time.Duration) *Memory {
	if max <= 0 {
		panic("ratelimit: max must be positive")
	}
	if win <= 0 {
		panic("ratelimit: window must be positive")
	}
	return &Memory{max: max, window: win, windows: make(map[string]*window), now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= m.window {
		if len(m.windows) > 10000 {
			m.sweep(now)
		}
		w = &window{start: now}
		m.windows[key] = w
	}
	w.count++
	return w.count <= m.max, nil
}

func (m *Memory) sweep(now time.Time) {
	for k, w := range m.windows {
		if now.Sub(w.start) >= m.window {
			delete(m.windows, k)
		}
	}
}

// Redis shares one fixed window per key across server instances.
type Redis struct {
	client    redis.Cmdable
	keyPrefix string
	max       int
	window    time.Duration
}

func NewRedis(client redis.Cmdable, keyPrefix string, max int, win time.Duration) *Redis {
	if client == nil {
		panic("ratelimit: redis client cannot be nil")
	}
	if max <= 0 || win <= 0 {
		panic("ratelimit: max and window must be positive")
	}
	if keyPrefix == "" {
		keyPrefix = "ms:"
	}
	return &Redis{client: client, keyPrefix: keyPrefix, max: max, window: win}
}

// Allow increments the key's counter. INCR and TTL go out in one pipeline;
// the expiry is set only when the key has none, so a busy client cannot
// keep extending its own window.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.keyPrefix + "ratelimit:" + key

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: pipeline: %w", err)
	}
	count, err := incr.Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr: %w", err)
	}
	if d, _ := ttl.Result(); d < 0 {
		if err := r.client.Expire(ctx, k, r.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}
	return count <= int64(r.max), nil
}
