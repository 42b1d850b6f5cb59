package repository

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist tracks revoked refresh-token ids (jti) until they expire.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const blacklistKeyPrefix = "auth:blacklist:"

type redisTokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist builds a Redis-backed blacklist.
func NewTokenBlacklist(client *redis.Client) TokenBlacklist {
	return &redisTokenBlacklist{client: client}
}

func (b *redisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return b.client.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err()
}

func (b *redisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// memoryTokenBlacklist is used when Redis is not configured, and in tests.
type memoryTokenBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryTokenBlacklist builds an in-memory blacklist.
func NewMemoryTokenBlacklist() TokenBlacklist {
	return &memoryTokenBlacklist{revoked: make(map[string]time.Time)}
}

func (b *memoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (b *memoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	deadline, ok := b.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		delete(b.revoked, jti)
		return false, nil
	}
	return true, nil
}
