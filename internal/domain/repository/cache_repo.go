package repository

import (
	"context"
)

// TTLCache is a key/value store whose entries expire after a fixed TTL.
// Values are JSON encoded; Get returns apperrors.ErrNotFound for a missing
// or expired key.
type TTLCache interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
