// test/helpers/helpers.go
package helpers

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamduc/swapmart/internal/core/domain"
)

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// CreateTestItem builds a listing with sensible defaults, applying any
// option functions on top.
func CreateTestItem(opts ...func(*domain.Item)) domain.Item {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := domain.Item{
		ID:         uuid.NewString(),
		SellerID:   "seller-1",
		Title:      "Vintage bicycle",
		Category:   domain.CategorySports,
		Condition:  domain.ConditionGood,
		Price:      decimal.NewFromInt(150),
		Negotiable: true,
		Status:     domain.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// WithLocation places the item at lat/lng (stored [lng, lat] on the wire).
func WithLocation(lat, lng float64) func(*domain.Item) {
	return func(i *domain.Item) {
		i.Location = &domain.GeoPoint{
			Type:        "Point",
			Coordinates: []float64{lng, lat},
		}
	}
}

// WithPrice sets the price from a float.
func WithPrice(price float64) func(*domain.Item) {
	return func(i *domain.Item) {
		i.Price = decimal.NewFromFloat(price)
	}
}

// WithSeller sets the seller id.
func WithSeller(sellerID string) func(*domain.Item) {
	return func(i *domain.Item) {
		i.SellerID = sellerID
	}
}

// WithCreatedAt sets the creation timestamp.
func WithCreatedAt(t time.Time) func(*domain.Item) {
	return func(i *domain.Item) {
		i.CreatedAt = t
	}
}

// CoordPtr returns a pointer to a coordinate.
func CoordPtr(lat, lng float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lng: lng}
}
