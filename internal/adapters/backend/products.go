// internal/adapters/backend/products.go
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
)

// Defaults applied when the caller passes a non-positive value.
const (
	DefaultSearchLimit        = 50
	DefaultNearbyRadiusMeters = 5000
)

// Cache key prefixes for catalog endpoints.
const (
	cacheKeyCatalog  = "products:catalog"
	cacheKeyNewest   = "products:newest"
	cacheKeyCategory = "products:category:"
)

// ProductClient provides typed queries over the backend REST API. Each
// method validates its required parameters locally, before any network
// call, and passes the server's result array through unmodified.
//
// When a cache is configured, the catalog endpoints (ListAll, Newest,
// ByCategory) are served read-through with a short TTL; personalized
// and geo queries always hit the network.
type ProductClient struct {
	client   *Client
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Statically assert that *ProductClient implements the ProductAPI interface.
var _ ports.ProductAPI = (*ProductClient)(nil)

// NewProductClient creates a product query client. cache may be nil.
func NewProductClient(client *Client, cache ports.CacheRepository, cacheTTL time.Duration, logger *slog.Logger) *ProductClient {
	return &ProductClient{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("component", "product_client")),
	}
}

// ListAll fetches the full catalog.
func (p *ProductClient) ListAll(ctx context.Context) ([]domain.Item, error) {
	return p.cachedList(ctx, cacheKeyCatalog, func() ([]domain.Item, error) {
		var items []domain.Item
		if err := p.client.Get(ctx, "/items", nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
}

// GetByID fetches a single listing. viewerID is optional and only used
// by the server for personalization.
func (p *ProductClient) GetByID(ctx context.Context, itemID, viewerID string) (*domain.Item, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item id is required")
	}

	query := url.Values{}
	if viewerID != "" {
		query.Set("userId", viewerID)
	}

	var item domain.Item
	if err := p.client.Get(ctx, "/items/"+url.PathEscape(itemID), query, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ByCategory fetches listings in an exact category.
func (p *ProductClient) ByCategory(ctx context.Context, category domain.ItemCategory) ([]domain.Item, error) {
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	return p.cachedList(ctx, cacheKeyCategory+string(category), func() ([]domain.Item, error) {
		var items []domain.Item
		if err := p.client.Get(ctx, "/items/category/"+url.PathEscape(string(category)), nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
}

// Recommended fetches server-side recommendations for a user.
func (p *ProductClient) Recommended(ctx context.Context, userID string) ([]domain.Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	var items []domain.Item
	if err := p.client.Get(ctx, "/items/recommended/"+url.PathEscape(userID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ForYou fetches the personalized feed for a user.
func (p *ProductClient) ForYou(ctx context.Context, userID string) ([]domain.Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	var items []domain.Item
	if err := p.client.Get(ctx, "/items/for-you/"+url.PathEscape(userID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Search performs a free-text search. viewerID is optional; limit
// defaults to DefaultSearchLimit.
func (p *ProductClient) Search(ctx context.Context, query, viewerID string, limit int) ([]domain.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	if viewerID != "" {
		params.Set("userId", viewerID)
	}

	var items []domain.Item
	if err := p.client.Get(ctx, "/search", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Nearby fetches listings within radiusMeters of a point. The radius
// defaults to DefaultNearbyRadiusMeters.
func (p *ProductClient) Nearby(ctx context.Context, lat, lng float64, radiusMeters int) ([]domain.Item, error) {
	origin := domain.Coordinate{Lat: lat, Lng: lng}
	if !origin.Valid() {
		return nil, fmt.Errorf("invalid coordinates: lat=%v lng=%v", lat, lng)
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadiusMeters
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radiusMeters))

	var items []domain.Item
	if err := p.client.Get(ctx, "/items/nearby", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Newest fetches the newest listings.
func (p *ProductClient) Newest(ctx context.Context) ([]domain.Item, error) {
	return p.cachedList(ctx, cacheKeyNewest, func() ([]domain.Item, error) {
		var items []domain.Item
		if err := p.client.Get(ctx, "/items/new", nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
}

func (p *ProductClient) cachedList(ctx context.Context, key string, fetch func() ([]domain.Item, error)) ([]domain.Item, error) {
	if p.cache == nil {
		return fetch()
	}

	var items []domain.Item
	err := p.cache.GetOrSet(ctx, key, &items, func() (interface{}, error) {
		fresh, err := fetch()
		if err != nil {
			return nil, err
		}
		return fresh, nil
	}, p.cacheTTL)
	if err != nil {
		return nil, err
	}
	return items, nil
}
