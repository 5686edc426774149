// test/mocks/mocks.go

// Package mocks contains hand-written fakes for the application's
// ports. Function fields default to empty results so tests only stub
// what they care about; call counters let tests assert which endpoints
// were exercised.
package mocks

import (
	"context"
	"sync"

	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
)

// FakeProductAPI implements ports.ProductAPI with pluggable functions.
type FakeProductAPI struct {
	mu    sync.Mutex
	calls map[string]int

	ListAllFn     func(ctx context.Context) ([]domain.Item, error)
	GetByIDFn     func(ctx context.Context, itemID, viewerID string) (*domain.Item, error)
	ByCategoryFn  func(ctx context.Context, category domain.ItemCategory) ([]domain.Item, error)
	RecommendedFn func(ctx context.Context, userID string) ([]domain.Item, error)
	ForYouFn      func(ctx context.Context, userID string) ([]domain.Item, error)
	SearchFn      func(ctx context.Context, query, viewerID string, limit int) ([]domain.Item, error)
	NearbyFn      func(ctx context.Context, lat, lng float64, radiusMeters int) ([]domain.Item, error)
	NewestFn      func(ctx context.Context) ([]domain.Item, error)
}

// Statically assert that *FakeProductAPI implements the ProductAPI interface.
var _ ports.ProductAPI = (*FakeProductAPI)(nil)

// NewFakeProductAPI creates an empty fake.
func NewFakeProductAPI() *FakeProductAPI {
	return &FakeProductAPI{calls: make(map[string]int)}
}

// Calls returns how many times the named method was invoked.
func (f *FakeProductAPI) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeProductAPI) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeProductAPI) ListAll(ctx context.Context) ([]domain.Item, error) {
	f.record("ListAll")
	if f.ListAllFn != nil {
		return f.ListAllFn(ctx)
	}
	return nil, nil
}

func (f *FakeProductAPI) GetByID(ctx context.Context, itemID, viewerID string) (*domain.Item, error) {
	f.record("GetByID")
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, itemID, viewerID)
	}
	return nil, nil
}

func (f *FakeProductAPI) ByCategory(ctx context.Context, category domain.ItemCategory) ([]domain.Item, error) {
	f.record("ByCategory")
	if f.ByCategoryFn != nil {
		return f.ByCategoryFn(ctx, category)
	}
	return nil, nil
}

func (f *FakeProductAPI) Recommended(ctx context.Context, userID string) ([]domain.Item, error) {
	f.record("Recommended")
	if f.RecommendedFn != nil {
		return f.RecommendedFn(ctx, userID)
	}
	return nil, nil
}

func (f *FakeProductAPI) ForYou(ctx context.Context, userID string) ([]domain.Item, error) {
	f.record("ForYou")
	if f.ForYouFn != nil {
		return f.ForYouFn(ctx, userID)
	}
	return nil, nil
}

func (f *FakeProductAPI) Search(ctx context.Context, query, viewerID string, limit int) ([]domain.Item, error) {
	f.record("Search")
	if f.SearchFn != nil {
		return f.SearchFn(ctx, query, viewerID, limit)
	}
	return nil, nil
}

func (f *FakeProductAPI) Nearby(ctx context.Context, lat, lng float64, radiusMeters int) ([]domain.Item, error) {
	f.record("Nearby")
	if f.NearbyFn != nil {
		return f.NearbyFn(ctx, lat, lng, radiusMeters)
	}
	return nil, nil
}

func (f *FakeProductAPI) Newest(ctx context.Context) ([]domain.Item, error) {
	f.record("Newest")
	if f.NewestFn != nil {
		return f.NewestFn(ctx)
	}
	return nil, nil
}

// FakeTokenStore is an in-memory ports.TokenStore.
type FakeTokenStore struct {
	mu         sync.Mutex
	pair       ports.TokenPair
	LoadErr    error
	SaveErr    error
	ClearErr   error
	LoadCalls  int
	SaveCalls  int
	ClearCalls int
}

// Statically assert that *FakeTokenStore implements the TokenStore interface.
var _ ports.TokenStore = (*FakeTokenStore)(nil)

// NewFakeTokenStore creates a store pre-seeded with pair.
func NewFakeTokenStore(pair ports.TokenPair) *FakeTokenStore {
	return &FakeTokenStore{pair: pair}
}

func (f *FakeTokenStore) Load(context.Context) (ports.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadCalls++
	if f.LoadErr != nil {
		return ports.TokenPair{}, f.LoadErr
	}
	return f.pair, nil
}

func (f *FakeTokenStore) Save(_ context.Context, pair ports.TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveCalls++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.pair = pair
	return nil
}

func (f *FakeTokenStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClearCalls++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.pair = ports.TokenPair{}
	return nil
}

// Pair returns the currently stored pair.
func (f *FakeTokenStore) Pair() ports.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pair
}
