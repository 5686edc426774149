// internal/adapters/redis_adapter/cache_test.go
package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/phamduc/swapmart/internal/adapters/redis_adapter"
	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
	"github.com/phamduc/swapmart/test/helpers"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, ports.CacheRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)

	items := []domain.Item{
		helpers.CreateTestItem(helpers.WithPrice(0)),
		helpers.CreateTestItem(helpers.WithLocation(21.03, 105.85)),
	}

	require.NoError(t, cache.Set(ctx, "products:catalog", items))

	var got []domain.Item
	require.NoError(t, cache.Get(ctx, "products:catalog", &got))
	require.Len(t, got, 2)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.True(t, got[0].IsFree(), "zero price must survive the cache round-trip")
	require.NotNil(t, got[1].Location)
	assert.Equal(t, []float64{105.85, 21.03}, got[1].Location.Coordinates)
}

func TestCache_GetMiss(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)

	var got []domain.Item
	err := cache.Get(ctx, "missing", &got)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return []string{"a", "b"}, nil
	}

	var first []string
	require.NoError(t, cache.GetOrSet(ctx, "k", &first, fetch, time.Minute))
	assert.Equal(t, []string{"a", "b"}, first)

	var second []string
	require.NoError(t, cache.GetOrSet(ctx, "k", &second, fetch, time.Minute))
	assert.Equal(t, []string{"a", "b"}, second)

	assert.Equal(t, 1, fetches, "second call must be served from cache")
}

func TestCache_GetOrSetPropagatesFetchError(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)

	wantErr := errors.New("backend down")
	var dest []string
	err := cache.GetOrSet(ctx, "k", &dest, func() (interface{}, error) {
		return nil, wantErr
	}, time.Minute)
	assert.ErrorIs(t, err, wantErr)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	require.NoError(t, cache.Delete(ctx, "k"))

	var got string
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), redis_a.ErrCacheMiss)
}

func TestCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestCache(t)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	mr.FastForward(6 * time.Minute)

	var got string
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), redis_a.ErrCacheMiss)
}

func TestCache_Ping(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestCache(t)

	require.NoError(t, cache.Ping(ctx))
	mr.Close()
	assert.Error(t, cache.Ping(ctx))
}
