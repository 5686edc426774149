// internal/core/services/types.go
package services

import (
	"github.com/phamduc/swapmart/internal/core/domain"
)

// Viewer is the canonical identity and location of the current user.
// Both fields are resolved by an external auth/location layer and
// passed in as plain values; an empty ID means anonymous, a nil Coord
// means location is unknown.
type Viewer struct {
	ID    string
	Coord *domain.Coordinate
}

// OriginMode selects how the search engine obtains its raw candidate set.
type OriginMode string

const (
	OriginNearYou OriginMode = "nearYou"
	OriginForYou  OriginMode = "forYou"
	OriginSearch  OriginMode = "search"
)

// SortMode orders the derived list.
type SortMode string

const (
	SortDefault   SortMode = ""
	SortPriceAsc  SortMode = "priceAsc"
	SortPriceDesc SortMode = "priceDesc"
	SortNewest    SortMode = "newest"
)

// Filters are the independent, recombinable toggles applied to the raw
// candidate set. They compose with AND semantics and always apply
// before sorting.
type Filters struct {
	Category domain.ItemCategory
	FreeOnly bool
	NearMe   bool
	Sort     SortMode
}

// HomeFeed holds the four landing-view lists.
type HomeFeed struct {
	ForYou      []domain.ItemWithDistance `json:"forYou"`
	Nearby      []domain.ItemWithDistance `json:"nearby"`
	NewArrivals []domain.ItemWithDistance `json:"newArrivals"`
	Explore     []domain.ItemWithDistance `json:"explore"`
}

// excludeSeller drops listings owned by viewerID. An empty viewerID
// keeps everything: anonymous users see all listings, including ones
// they could not own.
func excludeSeller(items []domain.Item, viewerID string) []domain.Item {
	if viewerID == "" {
		return items
	}
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.SellerID == viewerID {
			continue
		}
		out = append(out, item)
	}
	return out
}
