// internal/core/domain/item.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemCategory represents listing categories
type ItemCategory string

// Category constants
const (
	CategoryElectronics ItemCategory = "electronics"
	CategoryFurniture   ItemCategory = "furniture"
	CategoryClothing    ItemCategory = "clothing"
	CategoryBooks       ItemCategory = "books"
	CategoryVehicles    ItemCategory = "vehicles"
	CategoryHome        ItemCategory = "home"
	CategorySports      ItemCategory = "sports"
	CategoryToys        ItemCategory = "toys"
	CategoryBeauty      ItemCategory = "beauty"
	CategoryOther       ItemCategory = "other"
)

// ItemCondition represents listing conditions
type ItemCondition string

// Condition constants
const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
	ConditionPoor    ItemCondition = "poor"
)

// ListingStatus represents the lifecycle status of a listing
type ListingStatus string

const (
	StatusActive  ListingStatus = "ACTIVE"
	StatusPending ListingStatus = "PENDING"
	StatusSold    ListingStatus = "SOLD"
	StatusDeleted ListingStatus = "DELETED"
)

// GeoPoint is the GeoJSON wire representation of a listing location.
// Coordinates are stored [lng, lat] -- reversed from Coordinate.
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Coordinate converts the wire point into a semantic Coordinate,
// returning nil when the point is malformed.
func (p *GeoPoint) Coordinate() *Coordinate {
	if p == nil {
		return nil
	}
	return ToCoordinate(p.Coordinates)
}

// Item is a marketplace listing. Listings are created and mutated
// exclusively by the backend; this client holds read-only, possibly
// stale copies.
type Item struct {
	ID            string          `json:"_id"`
	SellerID      string          `json:"sellerId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Category      ItemCategory    `json:"category"`
	Condition     ItemCondition   `json:"condition"`
	Price         decimal.Decimal `json:"price"`
	Negotiable    bool            `json:"negotiable"`
	Images        []string        `json:"images,omitempty"`
	Location      *GeoPoint       `json:"location,omitempty"`
	Status        ListingStatus   `json:"status"`
	ViewCount     int             `json:"viewCount"`
	FavoriteCount int             `json:"favoriteCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsFree reports whether the listing is a free item. A zero price is a
// legitimate value, so the check is strict equality on the decimal, not
// a falsy coercion.
func (i *Item) IsFree() bool {
	return i.Price.IsZero()
}

// ItemWithDistance is an Item plus an optional client-computed distance
// from the viewer. DistanceKm is present iff both the viewer coordinate
// and the item location were valid; it is never persisted and never
// coerced to zero when absent.
type ItemWithDistance struct {
	Item
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}
