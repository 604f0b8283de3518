// Package cache 提供统计结果缓存，Redis 可用时使用 Redis，否则退化为进程内 LRU。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache 缓存接口
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisCache 基于 Redis 的缓存
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, key, value, c.ttl).Err()
}

// DeletePrefix 删除前缀匹配的所有键
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// MemoryCache 进程内 LRU 缓存
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := c.lru.Get(key)
	return val, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.lru.Add(key, value)
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
	return nil
}

// GetJSON 读取并反序列化，未命中返回 false
func GetJSON(ctx context.Context, c Cache, key string, dst interface{}) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化后写入
func SetJSON(ctx context.Context, c Cache, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw)
}
