package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValueCache stores JSON-encoded values with a TTL.
// Get returns false on a miss.
type ValueCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisValueCache implements ValueCache on Redis
type RedisValueCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisValueCache creates a value cache whose keys live under keyPrefix
func NewRedisValueCache(client redis.UniversalClient, keyPrefix string) *RedisValueCache {
	return &RedisValueCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisValueCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisValueCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes all keys under a prefix using SCAN
func (c *RedisValueCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+prefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", prefix, err)
	}
	return nil
}

type memoryValue struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryValueCache is a process-local ValueCache
type MemoryValueCache struct {
	mu     sync.Mutex
	values map[string]memoryValue
	now    func() time.Time
}

// NewMemoryValueCache creates an empty in-memory value cache
func NewMemoryValueCache() *MemoryValueCache {
	return &MemoryValueCache{values: make(map[string]memoryValue), now: time.Now}
}

func (c *MemoryValueCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	v, ok := c.values[key]
	if ok && !c.now().Before(v.expiresAt) {
		delete(c.values, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v.raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryValueCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = memoryValue{raw: raw, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryValueCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			delete(c.values, k)
		}
	}
	return nil
}

var (
	_ ValueCache = (*RedisValueCache)(nil)
	_ ValueCache = (*MemoryValueCache)(nil)
)
