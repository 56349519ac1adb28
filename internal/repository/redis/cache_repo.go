package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// CacheRepo implements repository.TTLCache on Redis.
// Every key is namespaced with prefix and expires after ttl.
type CacheRepo struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewCacheRepo creates a Redis backed TTL cache
func NewCacheRepo(client redis.UniversalClient, prefix string, ttl time.Duration) (*CacheRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for CacheRepo")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	return &CacheRepo{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *CacheRepo) key(k string) string {
	return r.prefix + ":" + k
}

// Set stores value as JSON
func (r *CacheRepo) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), data, r.ttl).Err()
}

// Get decodes the stored JSON into dest
func (r *CacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key
func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Exists checks whether a key is present
func (r *CacheRepo) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
