package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

// CacheRepo implements repository.TTLCache in process memory.
// At most capacity entries are kept; the least recently used one is evicted
// first and every entry expires ttl after it was set.
type CacheRepo struct {
	lru *expirable.LRU[string, []byte]
}

// NewCacheRepo creates an in-memory TTL cache
func NewCacheRepo(capacity int, ttl time.Duration) (*CacheRepo, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	return &CacheRepo{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}, nil
}

// Set stores value as JSON
func (r *CacheRepo) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.lru.Add(key, data)
	return nil
}

// Get decodes the stored JSON into dest
func (r *CacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := r.lru.Get(key)
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key
func (r *CacheRepo) Delete(_ context.Context, key string) error {
	r.lru.Remove(key)
	return nil
}

// Exists checks whether a key is present
func (r *CacheRepo) Exists(_ context.Context, key string) (bool, error) {
	return r.lru.Contains(key), nil
}

// Len returns the number of live entries
func (r *CacheRepo) Len() int {
	return r.lru.Len()
}
