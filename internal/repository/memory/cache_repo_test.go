package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

type pending struct {
	Email string `json:"email"`
	IP    string `json:"ip"`
}

func TestCacheRepo_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cache, err := NewCacheRepo(10, time.Hour)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "tok", pending{Email: "ana@example.com", IP: "10.0.0.1"}))

	var got pending
	require.NoError(t, cache.Get(ctx, "tok", &got))
	assert.Equal(t, "ana@example.com", got.Email)

	exists, err := cache.Exists(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "tok"))
	assert.ErrorIs(t, cache.Get(ctx, "tok", &got), apperrors.ErrNotFound)
}

func TestCacheRepo_Expires(t *testing.T) {
	ctx := context.Background()
	cache, err := NewCacheRepo(10, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "k", 1))

	assert.Eventually(t, func() bool {
		var v int
		return cache.Get(ctx, "k", &v) != nil
	}, time.Second, 10*time.Millisecond)
}

func TestCacheRepo_EvictsOldestOverCapacity(t *testing.T) {
	ctx := context.Background()
	cache, err := NewCacheRepo(2, time.Hour)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "a", 1))
	require.NoError(t, cache.Set(ctx, "b", 2))
	require.NoError(t, cache.Set(ctx, "c", 3))

	var v int
	assert.ErrorIs(t, cache.Get(ctx, "a", &v), apperrors.ErrNotFound)
	require.NoError(t, cache.Get(ctx, "c", &v))
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, cache.Len())
}

func TestNewCacheRepo_RejectsInvalidSettings(t *testing.T) {
	_, err := NewCacheRepo(0, time.Hour)
	assert.Error(t, err)

	_, err = NewCacheRepo(10, 0)
	assert.Error(t, err)
}
