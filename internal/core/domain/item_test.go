// internal/core/domain/item_test.go
package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduc/swapmart/internal/core/domain"
)

func TestItem_UnmarshalWireFormat(t *testing.T) {
	payload := `{
		"_id": "665f1c2ab1",
		"sellerId": "u42",
		"title": "Study desk",
		"category": "furniture",
		"condition": "good",
		"price": 0,
		"negotiable": false,
		"location": {"type": "Point", "coordinates": [105.85, 21.03]},
		"status": "ACTIVE",
		"viewCount": 7,
		"favoriteCount": 2,
		"createdAt": "2025-06-01T12:00:00Z",
		"updatedAt": "2025-06-02T08:30:00Z"
	}`

	var item domain.Item
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "665f1c2ab1", item.ID)
	assert.Equal(t, "u42", item.SellerID)
	assert.Equal(t, domain.CategoryFurniture, item.Category)
	assert.Equal(t, domain.StatusActive, item.Status)
	assert.True(t, item.IsFree(), "price 0 is a legitimate free item")

	coord := item.Location.Coordinate()
	require.NotNil(t, coord)
	assert.Equal(t, 21.03, coord.Lat)
	assert.Equal(t, 105.85, coord.Lng)
}

func TestItem_IsFree(t *testing.T) {
	var item domain.Item
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"x","price":0}`), &item))
	assert.True(t, item.IsFree())

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"y","price":0.01}`), &item))
	assert.False(t, item.IsFree())
}

func TestGeoPoint_Coordinate_NilReceiver(t *testing.T) {
	var p *domain.GeoPoint
	assert.Nil(t, p.Coordinate())
}
