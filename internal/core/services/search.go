// internal/core/services/search.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
)

// Search defaults.
const (
	DefaultPageSize            = 15
	DefaultNearYouRadiusMeters = 10000
	DefaultNearMeMaxKm         = 10.0
	DefaultSearchLimit         = 100

	// DefaultLoadMoreDelay is a deliberate UX throttle on load-more,
	// not a network wait: it paces rapid scroll-triggered calls.
	DefaultLoadMoreDelay = 500 * time.Millisecond
)

// farSentinelKm sorts distance-less items last. It exists only inside
// the sort comparator; a missing distance is never coerced earlier.
const farSentinelKm = math.MaxFloat64

// DefaultFallbackOrigin is the landmark used by near-you mode when no
// viewer coordinate is available (Hoan Kiem Lake, Hanoi). Its use is
// logged and exposed through the session state so a UI can signal it.
var DefaultFallbackOrigin = domain.Coordinate{Lat: 21.0285, Lng: 105.8542}

// SearchConfig holds search session tuning.
type SearchConfig struct {
	PageSize            int
	LoadMoreDelay       time.Duration
	NearYouRadiusMeters int
	NearMeMaxKm         float64
	SearchLimit         int
	FallbackOrigin      domain.Coordinate
}

func (c SearchConfig) withDefaults() SearchConfig {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	// Zero means unset; pass a negative delay to disable pacing.
	if c.LoadMoreDelay == 0 {
		c.LoadMoreDelay = DefaultLoadMoreDelay
	} else if c.LoadMoreDelay < 0 {
		c.LoadMoreDelay = 0
	}
	if c.NearYouRadiusMeters <= 0 {
		c.NearYouRadiusMeters = DefaultNearYouRadiusMeters
	}
	if c.NearMeMaxKm <= 0 {
		c.NearMeMaxKm = DefaultNearMeMaxKm
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if !c.FallbackOrigin.Valid() || (c.FallbackOrigin == domain.Coordinate{}) {
		c.FallbackOrigin = DefaultFallbackOrigin
	}
	return c
}

// SearchState is a snapshot of one query session.
type SearchState struct {
	Items              []domain.ItemWithDistance // visible window
	Page               int
	Total              int // full derived length
	IsEnd              bool
	Loading            bool
	LoadingMore        bool
	Refreshing         bool
	UsedFallbackOrigin bool
}

// SearchSession runs one query session: it fetches a raw candidate set
// according to its origin mode, derives a filtered and sorted list, and
// exposes a paginated window over it. Sessions are created per query
// screen and discarded on navigation away.
//
// The raw set is the session's source of truth; the derived list is
// recomputed wholesale on every raw/coordinate/filter change, never
// patched incrementally. A generation counter guarantees that a
// superseded fetch can never overwrite a newer one.
type SearchSession struct {
	api    ports.ProductAPI
	cfg    SearchConfig
	logger *slog.Logger

	mu           sync.Mutex
	viewer       Viewer
	origin       OriginMode
	query        string
	filters      Filters
	raw          []domain.Item
	derived      []domain.ItemWithDistance
	page         int
	generation   uint64
	fetching     bool
	loadingMore  bool
	refreshing   bool
	usedFallback bool
}

// NewSearchSession creates a session for the given origin mode and viewer.
func NewSearchSession(api ports.ProductAPI, cfg SearchConfig, viewer Viewer, origin OriginMode, logger *slog.Logger) *SearchSession {
	return &SearchSession{
		api:    api,
		cfg:    cfg.withDefaults(),
		viewer: viewer,
		origin: origin,
		page:   1,
		logger: logger.With(
			slog.String("service", "search"),
			slog.String("origin", string(origin))),
	}
}

// Fetch runs the fetch phase: it resolves the raw candidate set for the
// current origin mode, applies self-filtering, resets pagination, and
// recomputes the derived list. On error the raw set is cleared so stale
// data is never displayed as fresh.
//
// Fetch is safe to call while a previous fetch is still settling: the
// newest call wins and older completions are discarded.
func (s *SearchSession) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.fetching = true
	s.page = 1
	viewer := s.viewer
	origin := s.origin
	query := s.query
	s.mu.Unlock()

	raw, usedFallback, err := s.fetchRaw(ctx, origin, viewer, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// A newer fetch owns this session; discard quietly.
		s.logger.DebugContext(ctx, "discarding superseded fetch result")
		return nil
	}
	s.fetching = false
	s.usedFallback = usedFallback

	if err != nil {
		s.raw = nil
		s.rederiveLocked()
		s.logger.WarnContext(ctx, "fetch failed, clearing results",
			slog.String("error", err.Error()))
		return fmt.Errorf("search fetch failed: %w", err)
	}

	s.raw = excludeSeller(raw, viewer.ID)
	s.rederiveLocked()

	s.logger.DebugContext(ctx, "fetch completed",
		slog.Int("raw_count", len(s.raw)),
		slog.Int("derived_count", len(s.derived)))
	return nil
}

// Refetch re-runs the fetch phase. A non-nil query replaces the
// session's remembered query text first.
func (s *SearchSession) Refetch(ctx context.Context, query *string) error {
	s.mu.Lock()
	if query != nil {
		s.query = *query
	}
	s.refreshing = true
	s.mu.Unlock()

	err := s.Fetch(ctx)

	s.mu.Lock()
	s.refreshing = false
	s.mu.Unlock()
	return err
}

// LoadMore reveals the next page after the configured pacing delay.
// It is a no-op while a load-more or primary fetch is in flight, or
// when the window already covers the whole derived list.
func (s *SearchSession) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loadingMore || s.fetching || s.isEndLocked() {
		s.mu.Unlock()
		return nil
	}
	s.loadingMore = true
	delay := s.cfg.LoadMoreDelay
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			s.mu.Lock()
			s.loadingMore = false
			s.mu.Unlock()
			return ctx.Err()
		}
	}

	s.mu.Lock()
	s.page++
	s.loadingMore = false
	s.mu.Unlock()
	return nil
}

// SetFilters replaces the filter/sort toggles and recomputes the
// derived list from the current raw set.
func (s *SearchSession) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.rederiveLocked()
}

// UpdateViewer replaces the viewer and recomputes distance annotations.
// Callers normally follow up with Refetch, since the raw candidate set
// may also depend on the viewer.
func (s *SearchSession) UpdateViewer(v Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = v
	s.rederiveLocked()
}

// Query returns the session's remembered query text.
func (s *SearchSession) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// State returns a snapshot of the session. The visible window is
// derived[0 : page*pageSize]; the end of the list is reached exactly
// when the window covers the full derived list. An empty derived list
// is "end" too -- the Loading flag, not emptiness, tells a UI whether
// results are still pending.
func (s *SearchSession) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.visibleLocked()
	items := make([]domain.ItemWithDistance, len(window))
	copy(items, window)

	return SearchState{
		Items:              items,
		Page:               s.page,
		Total:              len(s.derived),
		IsEnd:              s.isEndLocked(),
		Loading:            s.fetching,
		LoadingMore:        s.loadingMore,
		Refreshing:         s.refreshing,
		UsedFallbackOrigin: s.usedFallback,
	}
}

func (s *SearchSession) fetchRaw(ctx context.Context, origin OriginMode, viewer Viewer, query string) ([]domain.Item, bool, error) {
	switch origin {
	case OriginNearYou:
		coord := viewer.Coord
		usedFallback := false
		if coord == nil || !coord.Valid() {
			fallback := s.cfg.FallbackOrigin
			coord = &fallback
			usedFallback = true
			s.logger.WarnContext(ctx, "no viewer coordinate, using fallback origin",
				slog.Float64("lat", fallback.Lat),
				slog.Float64("lng", fallback.Lng))
		}
		items, err := s.api.Nearby(ctx, coord.Lat, coord.Lng, s.cfg.NearYouRadiusMeters)
		return items, usedFallback, err

	case OriginForYou:
		if viewer.ID != "" {
			items, err := s.api.ForYou(ctx, viewer.ID)
			if err != nil {
				return nil, false, err
			}
			if len(items) > 0 {
				return items, false, nil
			}
		}
		items, err := s.api.ListAll(ctx)
		return items, false, err

	default:
		if q := strings.TrimSpace(query); q != "" {
			items, err := s.api.Search(ctx, q, viewer.ID, s.cfg.SearchLimit)
			return items, false, err
		}
		items, err := s.api.ListAll(ctx)
		return items, false, err
	}
}

func (s *SearchSession) rederiveLocked() {
	s.derived = deriveListings(s.raw, s.viewer.Coord, s.filters, s.cfg.NearMeMaxKm)
}

func (s *SearchSession) visibleLocked() []domain.ItemWithDistance {
	limit := s.page * s.cfg.PageSize
	if limit > len(s.derived) {
		limit = len(s.derived)
	}
	return s.derived[:limit]
}

func (s *SearchSession) isEndLocked() bool {
	return len(s.visibleLocked()) == len(s.derived)
}

// deriveListings is the pure derivation phase: distance annotation,
// then the AND-composed filters, then sort. It never mutates raw.
func deriveListings(raw []domain.Item, coord *domain.Coordinate, f Filters, nearMeMaxKm float64) []domain.ItemWithDistance {
	annotated := domain.AnnotateDistances(raw, coord)

	out := make([]domain.ItemWithDistance, 0, len(annotated))
	for _, item := range annotated {
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.FreeOnly && !item.IsFree() {
			continue
		}
		if f.NearMe {
			// No distance means out of range under this toggle.
			if item.DistanceKm == nil || *item.DistanceKm > nearMeMaxKm {
				continue
			}
		}
		out = append(out, item)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.Cmp(out[j].Price) < 0
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.Cmp(out[j].Price) > 0
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		if f.NearMe {
			sort.SliceStable(out, func(i, j int) bool {
				return distanceOrSentinel(out[i]) < distanceOrSentinel(out[j])
			})
		}
		// Otherwise the server's order stands.
	}

	return out
}

func distanceOrSentinel(item domain.ItemWithDistance) float64 {
	if item.DistanceKm == nil {
		return farSentinelKm
	}
	return *item.DistanceKm
}
