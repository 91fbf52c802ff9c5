package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"classifieds/internal/domain"

	"github.com/redis/go-redis/v9"
)

const tagVocabularyKey = "classifieds:tags:active"

// Cache wraps a Redis client for read-mostly lookups.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache connects to addr and pings it.
func NewCache(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return New(client, ttl), nil
}

func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Tags returns the cached vocabulary. ok is false on a miss.
func (c *Cache) Tags(ctx context.Context) ([]domain.ServiceTag, bool, error) {
	raw, err := c.client.Get(ctx, tagVocabularyKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", tagVocabularyKey, err)
	}

	var tags []domain.ServiceTag
	if err := json.Unmarshal(raw, &tags); err != nil {
		_ = c.client.Del(ctx, tagVocabularyKey).Err()
		return nil, false, nil
	}
	return tags, true, nil
}

func (c *Cache) SetTags(ctx context.Context, tags []domain.ServiceTag) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if err := c.client.Set(ctx, tagVocabularyKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", tagVocabularyKey, err)
	}
	return nil
}

func (c *Cache) InvalidateTags(ctx context.Context) error {
	if err := c.client.Del(ctx, tagVocabularyKey).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", tagVocabularyKey, err)
	}
	return nil
}

// Health pings Redis.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
