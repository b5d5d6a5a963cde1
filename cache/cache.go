package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through accelerator in front of list/detail reads. It has
// no correctness role: every error is logged and treated as a miss, so its
// absence changes latency only, never answers.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// UserKey is the cache key for a user profile read.
func UserKey(username string) string {
	return "user:" + username
}

// CompetitionListKey is the cache key for one page of the competition list.
func CompetitionListKey(page, limit int) string {
	return fmt.Sprintf("competitions:page:%d:limit:%d", page, limit)
}

// TrainingListKey is the cache key for one page of the training list.
func TrainingListKey(page, limit int) string {
	return fmt.Sprintf("trainings:page:%d:limit:%d", page, limit)
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] GET %s failed: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// SetWithTTL stores a value with an expiry. Failures are logged and ignored.
func (c *Cache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[Cache] SET %s failed: %v", key, err)
	}
}

// Delete invalidates a key after a write. Failures are logged and ignored;
// the TTL bounds staleness either way.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[Cache] DEL %v failed: %v", keys, err)
	}
}

// DeletePattern invalidates all keys matching a glob pattern, used to drop
// every cached page of a list after a write.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[Cache] SCAN %s failed: %v", pattern, err)
		return
	}
	c.Delete(ctx, keys...)
}
