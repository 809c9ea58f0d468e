package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist remembers access tokens (by jti) revoked before they expire
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewTokenDenylist returns a Redis-backed denylist, or an in-memory one
// when client is nil
func NewTokenDenylist(client *redis.Client) TokenDenylist {
	if client == nil {
		return NewMemoryDenylist()
	}
	return NewRedisDenylist(client)
}

// RedisDenylist stores revoked jtis as expiring Redis keys
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist creates a Redis-backed denylist
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func denylistKey(jti string) string {
	return "denylist:access:" + jti
}

// Revoke denylists jti for ttl. A non-positive ttl is a no-op since the
// token has already expired.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token in redis: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is denylisted
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token in redis: %w", err)
	}
	return n > 0, nil
}

// MemoryDenylist is a single-process denylist for deployments without Redis
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an in-memory denylist
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke denylists jti for ttl
func (d *MemoryDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for key, expires := range d.entries {
		if !now.Before(expires) {
			delete(d.entries, key)
		}
	}
	d.entries[jti] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether jti is denylisted and not yet expired
func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expires, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if !d.now().Before(expires) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}
