// internal/adapters/backend/products_test.go
package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduc/swapmart/internal/adapters/backend"
	redis_a "github.com/phamduc/swapmart/internal/adapters/redis_adapter"
	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
	"github.com/phamduc/swapmart/test/helpers"
	"github.com/phamduc/swapmart/test/mocks"
)

func newProductClient(t *testing.T, serverURL string, cache ports.CacheRepository) *backend.ProductClient {
	t.Helper()
	client := newTestClient(t, serverURL, mocks.NewFakeTokenStore(ports.TokenPair{}))
	return backend.NewProductClient(client, cache, time.Minute, helpers.TestLogger())
}

func TestProductClient_ValidatesBeforeNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeEnvelope(w, http.StatusOK, []domain.Item{}, "ok", "")
	}))
	defer server.Close()

	products := newProductClient(t, server.URL, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "get_by_id_missing_id",
			call: func() error { _, err := products.GetByID(ctx, "", "u1"); return err },
		},
		{
			name: "by_category_missing_category",
			call: func() error { _, err := products.ByCategory(ctx, ""); return err },
		},
		{
			name: "recommended_missing_user",
			call: func() error { _, err := products.Recommended(ctx, ""); return err },
		},
		{
			name: "for_you_missing_user",
			call: func() error { _, err := products.ForYou(ctx, ""); return err },
		},
		{
			name: "search_blank_query",
			call: func() error { _, err := products.Search(ctx, "   ", "u1", 10); return err },
		},
		{
			name: "nearby_invalid_latitude",
			call: func() error { _, err := products.Nearby(ctx, 99, 105.85, 5000); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.call())
		})
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits), "validation failures must not reach the network")
}

func TestProductClient_SearchAppliesDefaults(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeEnvelope(w, http.StatusOK, []domain.Item{}, "ok", "")
	}))
	defer server.Close()

	products := newProductClient(t, server.URL, nil)

	_, err := products.Search(context.Background(), "bicycle", "u7", 0)
	require.NoError(t, err)

	assert.Equal(t, "bicycle", gotQuery.Get("q"))
	assert.Equal(t, "u7", gotQuery.Get("userId"))
	assert.Equal(t, "50", gotQuery.Get("limit"))
}

func TestProductClient_NearbyAppliesDefaults(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		writeEnvelope(w, http.StatusOK, []domain.Item{}, "ok", "")
	}))
	defer server.Close()

	products := newProductClient(t, server.URL, nil)

	_, err := products.Nearby(context.Background(), 21.03, 105.85, 0)
	require.NoError(t, err)

	assert.Equal(t, "/items/nearby", gotPath)
	assert.Equal(t, "21.03", gotQuery.Get("lat"))
	assert.Equal(t, "105.85", gotQuery.Get("lng"))
	assert.Equal(t, "5000", gotQuery.Get("radius"))
}

func TestProductClient_PassesResultsThroughUnmodified(t *testing.T) {
	items := []domain.Item{
		helpers.CreateTestItem(helpers.WithSeller("s1")),
		helpers.CreateTestItem(helpers.WithSeller("s2"), helpers.WithPrice(0)),
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, items, "ok", "")
	}))
	defer server.Close()

	products := newProductClient(t, server.URL, nil)

	got, err := products.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, items[1].ID, got[1].ID)
	assert.True(t, got[1].IsFree())
}

func TestProductClient_CatalogReadThroughCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeEnvelope(w, http.StatusOK, []domain.Item{helpers.CreateTestItem()}, "ok", "")
	}))
	defer server.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(rdb, time.Minute, helpers.TestLogger())

	products := newProductClient(t, server.URL, cache)
	ctx := context.Background()

	first, err := products.ListAll(ctx)
	require.NoError(t, err)
	second, err := products.ListAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second read must come from cache")
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestProductClient_PersonalizedQueriesBypassCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeEnvelope(w, http.StatusOK, []domain.Item{}, "ok", "")
	}))
	defer server.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(rdb, time.Minute, helpers.TestLogger())

	products := newProductClient(t, server.URL, cache)
	ctx := context.Background()

	_, err := products.ForYou(ctx, "u1")
	require.NoError(t, err)
	_, err = products.ForYou(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
