// internal/core/services/home_feed.go
package services

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
)

// Home feed defaults.
const (
	DefaultForYouLimit      = 5
	DefaultNearbyLimit      = 5
	DefaultNewArrivalsLimit = 5
	DefaultExploreLimit     = 10
	DefaultHomeRadiusMeters = 50000
)

// HomeConfig holds home feed tuning.
type HomeConfig struct {
	ForYouLimit        int
	NearbyLimit        int
	NewArrivalsLimit   int
	ExploreLimit       int
	NearbyRadiusMeters int
}

func (c HomeConfig) withDefaults() HomeConfig {
	if c.ForYouLimit <= 0 {
		c.ForYouLimit = DefaultForYouLimit
	}
	if c.NearbyLimit <= 0 {
		c.NearbyLimit = DefaultNearbyLimit
	}
	if c.NewArrivalsLimit <= 0 {
		c.NewArrivalsLimit = DefaultNewArrivalsLimit
	}
	if c.ExploreLimit <= 0 {
		c.ExploreLimit = DefaultExploreLimit
	}
	if c.NearbyRadiusMeters <= 0 {
		c.NearbyRadiusMeters = DefaultHomeRadiusMeters
	}
	return c
}

// HomeFeedService assembles the landing view: four capped,
// self-filtered, distance-annotated lists fetched concurrently. Each
// sub-feed supervises its own failure and degrades to an empty list;
// one failing branch never aborts the others, and Load itself only
// fails on a cancelled context.
type HomeFeedService struct {
	api    ports.ProductAPI
	cfg    HomeConfig
	logger *slog.Logger

	shuffle func(n int, swap func(i, j int))
}

// NewHomeFeedService creates a home feed service.
func NewHomeFeedService(api ports.ProductAPI, cfg HomeConfig, logger *slog.Logger) *HomeFeedService {
	return &HomeFeedService{
		api:     api,
		cfg:     cfg.withDefaults(),
		logger:  logger.With(slog.String("service", "home_feed")),
		shuffle: rand.Shuffle,
	}
}

// Load fetches all four sub-feeds. ready gates execution: until
// location resolution has had a chance to complete the feed stays
// empty, avoiding a flash of non-personalized content. Callers re-run
// Load whenever the viewer id, coordinate, or readiness changes.
func (s *HomeFeedService) Load(ctx context.Context, viewer Viewer, ready bool) (*HomeFeed, error) {
	feed := &HomeFeed{}
	if !ready {
		return feed, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Independently supervised branches: each captures its own failure
	// locally and always returns nil, so no branch cancels a sibling.
	var g errgroup.Group

	g.Go(func() error {
		feed.ForYou = s.forYou(ctx, viewer)
		return nil
	})
	g.Go(func() error {
		feed.Nearby = s.nearby(ctx, viewer)
		return nil
	})
	g.Go(func() error {
		feed.NewArrivals = s.newArrivals(ctx, viewer)
		return nil
	})
	g.Go(func() error {
		feed.Explore = s.explore(ctx, viewer)
		return nil
	})

	_ = g.Wait()
	return feed, nil
}

func (s *HomeFeedService) forYou(ctx context.Context, viewer Viewer) []domain.ItemWithDistance {
	var items []domain.Item
	if viewer.ID != "" {
		fetched, err := s.api.ForYou(ctx, viewer.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "for-you feed failed, falling back to catalog",
				slog.String("error", err.Error()))
		}
		items = fetched
	}

	if len(items) == 0 {
		fetched, err := s.api.ListAll(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "catalog fallback failed",
				slog.String("error", err.Error()))
			return []domain.ItemWithDistance{}
		}
		items = make([]domain.Item, len(fetched))
		copy(items, fetched)
		s.shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}

	return s.finish(items, viewer, s.cfg.ForYouLimit)
}

func (s *HomeFeedService) nearby(ctx context.Context, viewer Viewer) []domain.ItemWithDistance {
	if viewer.Coord == nil || !viewer.Coord.Valid() {
		return []domain.ItemWithDistance{}
	}

	items, err := s.api.Nearby(ctx, viewer.Coord.Lat, viewer.Coord.Lng, s.cfg.NearbyRadiusMeters)
	if err != nil {
		s.logger.WarnContext(ctx, "nearby feed failed",
			slog.String("error", err.Error()))
		return []domain.ItemWithDistance{}
	}

	return s.finish(items, viewer, s.cfg.NearbyLimit)
}

func (s *HomeFeedService) newArrivals(ctx context.Context, viewer Viewer) []domain.ItemWithDistance {
	items, err := s.api.Newest(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "new arrivals feed failed",
			slog.String("error", err.Error()))
		return []domain.ItemWithDistance{}
	}

	// Defensive re-sort: server ordering is not trusted.
	sorted := make([]domain.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	return s.finish(sorted, viewer, s.cfg.NewArrivalsLimit)
}

func (s *HomeFeedService) explore(ctx context.Context, viewer Viewer) []domain.ItemWithDistance {
	items, err := s.api.ListAll(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "explore feed failed",
			slog.String("error", err.Error()))
		return []domain.ItemWithDistance{}
	}

	return s.finish(items, viewer, s.cfg.ExploreLimit)
}

// finish applies the shared tail of every sub-feed: self-filter, cap,
// distance-annotate.
func (s *HomeFeedService) finish(items []domain.Item, viewer Viewer, limit int) []domain.ItemWithDistance {
	filtered := excludeSeller(items, viewer.ID)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return domain.AnnotateDistances(filtered, viewer.Coord)
}
