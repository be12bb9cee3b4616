package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

type LinkCache struct {
	client *redis.Client
}

func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{client: client}
}

func linkKey(key string) string {
	return fmt.Sprintf("link:%s", key)
}

// Get reports a miss with ok == false and a nil error.
func (c *LinkCache) Get(ctx context.Context, key string) (*domain.Link, bool, error) {
	data, err := c.client.Get(ctx, linkKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var link domain.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, false, fmt.Errorf("decode cached link %s: %w", key, err)
	}

	return &link, true, nil
}

func (c *LinkCache) Set(ctx context.Context, link *domain.Link, ttl time.Duration) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, linkKey(link.Key), data, ttl).Err()
}

func (c *LinkCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, linkKey(key)).Err()
}
