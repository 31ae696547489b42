// Package cooldown limits how often a user may open tickets.
package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Acquire starts a cooldown for key. When one is already running it returns
	// false and the time left.
	Acquire(ctx context.Context, key string) (bool, time.Duration, error)
	// Release ends the cooldown for key early
	Release(ctx context.Context, key string) error
}

// Redis stores cooldowns as expiring keys, shared across bot instances
type Redis struct {
	rediscli *redis.Client
	window   time.Duration
}

func NewRedis(rediscli *redis.Client, window time.Duration) *Redis {
	return &Redis{rediscli: rediscli, window: window}
}

func (r *Redis) Acquire(ctx context.Context, key string) (bool, time.Duration, error) {
	if r.window <= 0 {
		return true, 0, nil
	}

	cooldownKey := "ticket_cooldown:" + key

	ok, err := r.rediscli.SetNX(ctx, cooldownKey, "0", r.window).Result()

	if err != nil {
		return false, 0, fmt.Errorf("error setting cooldown: %w", err)
	}

	if ok {
		return true, 0, nil
	}

	ttl, err := r.rediscli.TTL(ctx, cooldownKey).Result()

	if err != nil {
		return false, 0, fmt.Errorf("error getting cooldown: %w", err)
	}

	// -1 and -2 mean the key has no expiry or vanished in between
	if ttl < 0 {
		ttl = 0
	}

	return false, ttl, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	err := r.rediscli.Del(ctx, "ticket_cooldown:"+key).Err()

	if err != nil {
		return fmt.Errorf("error clearing cooldown: %w", err)
	}

	return nil
}

// Memory is the single-process fallback when redis is not configured
type Memory struct {
	mu      sync.Mutex
	window  time.Duration
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemory(window time.Duration) *Memory {
	return &Memory{window: window, expires: map[string]time.Time{}, now: time.Now}
}

func (m *Memory) Acquire(ctx context.Context, key string) (bool, time.Duration, error) {
	if m.window <= 0 {
		return true, 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if until, ok := m.expires[key]; ok && now.Before(until) {
		return false, until.Sub(now), nil
	}

	m.expires[key] = now.Add(m.window)

	// Drop expired keys so the map does not grow with every user ever seen
	for k, until := range m.expires {
		if !now.Before(until) {
			delete(m.expires, k)
		}
	}

	return true, 0, nil
}

func (m *Memory) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.expires, key)
	return nil
}
