// internal/core/services/home_feed_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/services"
	"github.com/phamduc/swapmart/test/helpers"
	"github.com/phamduc/swapmart/test/mocks"
)

func manyItems(n int, opts ...func(*domain.Item)) []domain.Item {
	items := make([]domain.Item, n)
	for i := range items {
		items[i] = helpers.CreateTestItem(opts...)
	}
	return items
}

func TestHomeFeedService_NotReadyReturnsEmptyFeed(t *testing.T) {
	api := mocks.NewFakeProductAPI()
	svc := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger())

	feed, err := svc.Load(context.Background(), services.Viewer{ID: "u1"}, false)
	require.NoError(t, err)

	assert.Empty(t, feed.ForYou)
	assert.Empty(t, feed.Nearby)
	assert.Empty(t, feed.NewArrivals)
	assert.Empty(t, feed.Explore)
	assert.Equal(t, 0, api.Calls("ListAll"), "nothing fetches before location resolution completes")
}

func TestHomeFeedService_AllFeedsLoadConcurrently(t *testing.T) {
	api := mocks.NewFakeProductAPI()
	api.ForYouFn = func(context.Context, string) ([]domain.Item, error) {
		return manyItems(8), nil
	}
	api.NearbyFn = func(context.Context, float64, float64, int) ([]domain.Item, error) {
		return manyItems(7), nil
	}
	api.NewestFn = func(context.Context) ([]domain.Item, error) {
		return manyItems(6), nil
	}
	api.ListAllFn = func(context.Context) ([]domain.Item, error) {
		return manyItems(20), nil
	}

	viewer := services.Viewer{ID: "u1", Coord: helpers.CoordPtr(21.03, 105.85)}
	svc := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger())

	feed, err := svc.Load(context.Background(), viewer, true)
	require.NoError(t, err)

	assert.Len(t, feed.ForYou, 5)
	assert.Len(t, feed.Nearby, 5)
	assert.Len(t, feed.NewArrivals, 5)
	assert.Len(t, feed.Explore, 10)
}

func TestHomeFeedService_NearbyUsesConfiguredRadius(t *testing.T) {
	var gotRadius int
	api := mocks.NewFakeProductAPI()
	api.NearbyFn = func(_ context.Context, _, _ float64, radiusMeters int) ([]domain.Item, error) {
		gotRadius = radiusMeters
		return nil, nil
	}

	viewer := services.Viewer{ID: "u1", Coord: helpers.CoordPtr(21.03, 105.85)}
	svc := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger())

	_, err := svc.Load(context.Background(), viewer, true)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultHomeRadiusMeters, gotRadius)
}

func TestHomeFeedService_NearbySkippedWithoutCoordinate(t *testing.T) {
	api := mocks.NewFakeProductAPI()

	feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
		Load(context.Background(), services.Viewer{ID: "u1"}, true)
	require.NoError(t, err)

	assert.Empty(t, feed.Nearby)
	assert.Equal(t, 0, api.Calls("Nearby"))
}

func TestHomeFeedService_PartialFailuresDegradeLocally(t *testing.T) {
	api := mocks.NewFakeProductAPI()
	api.ForYouFn = func(context.Context, string) ([]domain.Item, error) {
		return nil, errors.New("for-you exploded")
	}
	api.NearbyFn = func(context.Context, float64, float64, int) ([]domain.Item, error) {
		return nil, errors.New("nearby exploded")
	}
	api.NewestFn = func(context.Context) ([]domain.Item, error) {
		return manyItems(3), nil
	}
	api.ListAllFn = func(context.Context) ([]domain.Item, error) {
		return nil, errors.New("catalog exploded")
	}

	viewer := services.Viewer{ID: "u1", Coord: helpers.CoordPtr(21.03, 105.85)}
	feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
		Load(context.Background(), viewer, true)

	require.NoError(t, err, "the aggregate always resolves")
	assert.Empty(t, feed.ForYou)
	assert.Empty(t, feed.Nearby)
	assert.Empty(t, feed.Explore)
	assert.Len(t, feed.NewArrivals, 3, "one failing branch never aborts its siblings")
}

func TestHomeFeedService_ForYouFallsBackToShuffledCatalog(t *testing.T) {
	t.Run("on_empty_personalized_result", func(t *testing.T) {
		api := mocks.NewFakeProductAPI()
		api.ListAllFn = func(context.Context) ([]domain.Item, error) {
			return manyItems(12), nil
		}

		viewer := services.Viewer{ID: "u1"}
		feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
			Load(context.Background(), viewer, true)
		require.NoError(t, err)

		assert.Equal(t, 1, api.Calls("ForYou"))
		assert.Len(t, feed.ForYou, 5)
	})

	t.Run("on_personalized_failure", func(t *testing.T) {
		api := mocks.NewFakeProductAPI()
		api.ForYouFn = func(context.Context, string) ([]domain.Item, error) {
			return nil, errors.New("boom")
		}
		api.ListAllFn = func(context.Context) ([]domain.Item, error) {
			return manyItems(12), nil
		}

		feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
			Load(context.Background(), services.Viewer{ID: "u1"}, true)
		require.NoError(t, err)
		assert.Len(t, feed.ForYou, 5)
	})

	t.Run("anonymous_goes_straight_to_catalog", func(t *testing.T) {
		api := mocks.NewFakeProductAPI()
		api.ListAllFn = func(context.Context) ([]domain.Item, error) {
			return manyItems(12), nil
		}

		feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
			Load(context.Background(), services.Viewer{}, true)
		require.NoError(t, err)

		assert.Equal(t, 0, api.Calls("ForYou"))
		assert.Len(t, feed.ForYou, 5)
	})
}

func TestHomeFeedService_NewArrivalsResortedClientSide(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	api := mocks.NewFakeProductAPI()
	api.NewestFn = func(context.Context) ([]domain.Item, error) {
		// Server order is deliberately scrambled.
		return []domain.Item{
			helpers.CreateTestItem(helpers.WithCreatedAt(base.Add(1 * time.Hour))),
			helpers.CreateTestItem(helpers.WithCreatedAt(base.Add(5 * time.Hour))),
			helpers.CreateTestItem(helpers.WithCreatedAt(base.Add(3 * time.Hour))),
		}, nil
	}

	feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
		Load(context.Background(), services.Viewer{ID: "u1"}, true)
	require.NoError(t, err)

	require.Len(t, feed.NewArrivals, 3)
	assert.True(t, feed.NewArrivals[0].CreatedAt.After(feed.NewArrivals[1].CreatedAt))
	assert.True(t, feed.NewArrivals[1].CreatedAt.After(feed.NewArrivals[2].CreatedAt))
}

func TestHomeFeedService_SelfFilteringAcrossAllFeeds(t *testing.T) {
	mine := func(i *domain.Item) { i.SellerID = "me" }
	theirs := func(i *domain.Item) { i.SellerID = "them" }

	api := mocks.NewFakeProductAPI()
	api.ForYouFn = func(context.Context, string) ([]domain.Item, error) {
		return append(manyItems(2, mine), manyItems(3, theirs)...), nil
	}
	api.NearbyFn = func(context.Context, float64, float64, int) ([]domain.Item, error) {
		return append(manyItems(1, mine), manyItems(2, theirs)...), nil
	}
	api.NewestFn = func(context.Context) ([]domain.Item, error) {
		return append(manyItems(2, mine), manyItems(2, theirs)...), nil
	}
	api.ListAllFn = func(context.Context) ([]domain.Item, error) {
		return append(manyItems(4, mine), manyItems(6, theirs)...), nil
	}

	viewer := services.Viewer{ID: "me", Coord: helpers.CoordPtr(21.03, 105.85)}
	feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
		Load(context.Background(), viewer, true)
	require.NoError(t, err)

	for name, list := range map[string][]domain.ItemWithDistance{
		"forYou":      feed.ForYou,
		"nearby":      feed.Nearby,
		"newArrivals": feed.NewArrivals,
		"explore":     feed.Explore,
	} {
		for _, item := range list {
			assert.NotEqual(t, "me", item.SellerID,
				fmt.Sprintf("%s must exclude the viewer's own listings", name))
		}
	}
}

func TestHomeFeedService_DistanceAnnotation(t *testing.T) {
	origin := domain.Coordinate{Lat: 21.03, Lng: 105.85}

	api := mocks.NewFakeProductAPI()
	api.NearbyFn = func(context.Context, float64, float64, int) ([]domain.Item, error) {
		return []domain.Item{itemAtKm(origin, 2)}, nil
	}
	api.ListAllFn = func(context.Context) ([]domain.Item, error) {
		return []domain.Item{helpers.CreateTestItem()}, nil
	}

	viewer := services.Viewer{ID: "u1", Coord: &origin}
	feed, err := services.NewHomeFeedService(api, services.HomeConfig{}, helpers.TestLogger()).
		Load(context.Background(), viewer, true)
	require.NoError(t, err)

	require.Len(t, feed.Nearby, 1)
	require.NotNil(t, feed.Nearby[0].DistanceKm)
	assert.InDelta(t, 2.0, *feed.Nearby[0].DistanceKm, 0.1)

	require.Len(t, feed.Explore, 1)
	assert.Nil(t, feed.Explore[0].DistanceKm, "items without a location pass through unannotated")
}
