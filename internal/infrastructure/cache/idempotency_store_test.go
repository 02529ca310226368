package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// storeContract runs the behaviour every IdempotencyStore must have
func storeContract(t *testing.T, store shared.IdempotencyStore, expire func(time.Duration)) {
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "second mark is a duplicate")

	done, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, store.Unmark(ctx, "evt-1"))
	done, err = store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, done, "unmarked events can be redelivered")

	_, err = store.MarkProcessed(ctx, "evt-2", time.Minute)
	require.NoError(t, err)
	expire(2 * time.Minute)
	isNew, err = store.MarkProcessed(ctx, "evt-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew, "expired marks no longer block")
}

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	var offset atomic.Int64
	store.now = func() time.Time { return time.Now().Add(time.Duration(offset.Load())) }

	storeContract(t, store, func(d time.Duration) { offset.Add(int64(d)) })

	t.Run("sweep drops expired marks", func(t *testing.T) {
		_, _ = store.MarkProcessed(context.Background(), "short", time.Second)
		offset.Add(int64(time.Hour))
		store.sweep()
		assert.Zero(t, store.Len())
	})

	t.Run("only one concurrent caller wins", func(t *testing.T) {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := store.MarkProcessed(context.Background(), "race", time.Hour); ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisIdempotencyStore(client, "test:")

	storeContract(t, store, mr.FastForward)

	assert.True(t, mr.Exists("test:evt-2"))
	assert.NoError(t, store.Close())
}

func TestRedisIdempotencyStore_ConnectionError(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisIdempotencyStore(client, "")
	mr.Close()

	_, err := store.MarkProcessed(context.Background(), "evt", time.Minute)
	assert.Error(t, err)
}
