package anonstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
	apperrors "github.com/sousamj2/explicolivais/internal/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 11, 3, 20, 0, 0, 0, time.Local)}
	seq := 0
	store, err := New(t.TempDir(), nil,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	require.NoError(t, err)
	return store, clock
}

func TestStore_SaveGetAndExpire(t *testing.T) {
	store, clock := newTestStore(t)

	id, err := store.Save(entity.AnswerMap{"0": {"1"}}, []int{101, 102})
	require.NoError(t, err)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, entity.AnswerMap{"101": {"1"}, "102": {"0"}}, rec.Answers)
	assert.True(t, clock.Now().Equal(rec.CreatedAt))

	clock.Advance(61 * time.Minute)

	removed, err := store.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	removed, err = store.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "a second sweep has nothing left to remove")
}

func TestStore_GetSweepsExpiredRows(t *testing.T) {
	store, clock := newTestStore(t)
	id, err := store.Save(entity.AnswerMap{"0": {"2"}}, []int{7})
	require.NoError(t, err)

	clock.Advance(time.Hour)

	_, err = store.Get(id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "a row exactly one hour old is expired")

	removed, err := store.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "Get already swept the row")
}

func TestStore_WritesHeaderOnce(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(entity.AnswerMap{"0": {"1"}}, []int{1})
	require.NoError(t, err)
	_, err = store.Save(entity.AnswerMap{"0": {"2"}}, []int{1})
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "quiz_uuid,timestamp,answers", lines[0])
	assert.Equal(t, `id-1,2025-11-03 20:00:00,"{""1"":[""1""]}"`, lines[1])
}

func TestStore_SaveWithoutQuestionNumbersKeepsKeys(t *testing.T) {
	store, _ := newTestStore(t)

	id, err := store.Save(entity.AnswerMap{"3": {"1", "2"}}, nil)
	require.NoError(t, err)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, entity.AnswerMap{"3": {"1", "2"}}, rec.Answers)
}

func TestStore_SweepKeepsInvalidTimestamps(t *testing.T) {
	store, clock := newTestStore(t)
	content := "quiz_uuid,timestamp,answers\n" +
		"old,2025-11-03 18:00:00,{}\n" +
		"bad,yesterday,{}\n" +
		"new,2025-11-03 19:30:00,{}\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	removed, err := store.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []entity.AnonymousResultSummary{
		{ID: "bad", Timestamp: "yesterday"},
		{ID: "new", Timestamp: "2025-11-03 19:30:00"},
	}, list)

	clock.Advance(24 * time.Hour)
	removed, err = store.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []entity.AnonymousResultSummary{{ID: "bad", Timestamp: "yesterday"}}, list)
}

func TestStore_SweepWithoutRemovalDoesNotRewrite(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Save(entity.AnswerMap{"0": {"1"}}, []int{1})
	require.NoError(t, err)
	before, err := os.Stat(store.Path())
	require.NoError(t, err)

	removed, err := store.SweepExpired()
	require.NoError(t, err)

	after, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.True(t, os.SameFile(before, after), "the file must not be replaced")
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	first, err := store.Save(entity.AnswerMap{"0": {"1"}}, []int{1})
	require.NoError(t, err)
	second, err := store.Save(entity.AnswerMap{"0": {"2"}}, []int{1})
	require.NoError(t, err)

	deleted, err := store.Delete(first)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(first)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.Get(first)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.Get(second)
	assert.NoError(t, err)
}

func TestStore_EmptyStore(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	removed, err := store.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	store, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Save(entity.AnswerMap{"0": {"1"}}, []int{1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestStore_StorageErrorMatchesSentinel(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, nil)
	require.NoError(t, err)
	// A directory where the file should be makes every open fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileName), 0o755))

	_, err = store.Save(entity.AnswerMap{"0": {"1"}}, []int{1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "open", storageErr.Op)
}
