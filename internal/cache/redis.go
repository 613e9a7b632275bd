package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	baseTTL   = 15 * time.Minute
	maxJitter = 5 * time.Minute
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &snapshot, nil
}

// Set stores the snapshot with a jittered TTL so entries written together do
// not expire together.
func (r *RedisCache) Set(ctx context.Context, snapshot domain.CartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + rand.N(maxJitter)
	if err := r.client.Set(ctx, cacheKey(snapshot.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) SetIfAbsent(ctx context.Context, snapshot domain.CartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + rand.N(maxJitter)
	if err := r.client.SetNX(ctx, cacheKey(snapshot.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
