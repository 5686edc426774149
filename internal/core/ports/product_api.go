// internal/core/ports/product_api.go
package ports

import (
	"context"

	"github.com/phamduc/swapmart/internal/core/domain"
)

// ProductAPI defines the query port against the marketplace backend.
// Methods validate their required parameters locally and otherwise pass
// the server's result array through unmodified; no client-side business
// logic lives behind this interface.
type ProductAPI interface {
	ListAll(ctx context.Context) ([]domain.Item, error)
	GetByID(ctx context.Context, itemID, viewerID string) (*domain.Item, error)
	ByCategory(ctx context.Context, category domain.ItemCategory) ([]domain.Item, error)
	Recommended(ctx context.Context, userID string) ([]domain.Item, error)
	ForYou(ctx context.Context, userID string) ([]domain.Item, error)
	Search(ctx context.Context, query, viewerID string, limit int) ([]domain.Item, error)
	Nearby(ctx context.Context, lat, lng float64, radiusMeters int) ([]domain.Item, error)
	Newest(ctx context.Context) ([]domain.Item, error)
}
