// cmd/swapctl/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/phamduc/swapmart/internal/adapters/backend"
	redis_a "github.com/phamduc/swapmart/internal/adapters/redis_adapter"
	"github.com/phamduc/swapmart/internal/adapters/tokenstore"
	"github.com/phamduc/swapmart/internal/core/domain"
	"github.com/phamduc/swapmart/internal/core/ports"
	"github.com/phamduc/swapmart/internal/core/services"
	"github.com/phamduc/swapmart/internal/pkg/config"
	"github.com/phamduc/swapmart/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		mode     = flag.String("mode", "search", "query mode: search, nearYou, forYou, home")
		query    = flag.String("query", "", "free-text search query")
		viewerID = flag.String("viewer", "", "viewer user id (empty for anonymous)")
		lat      = flag.Float64("lat", 0, "viewer latitude")
		lng      = flag.Float64("lng", 0, "viewer longitude")
		pages    = flag.Int("pages", 1, "number of pages to reveal")
	)
	flag.Parse()

	slogger := logger.SetupLogger("info", "text")
	slogger.Info("starting swapmart client",
		slog.String("version", Version),
		slog.String("build_time", BuildTime))

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	viewer := services.Viewer{ID: *viewerID}
	if *lat != 0 || *lng != 0 {
		coord := domain.Coordinate{Lat: *lat, Lng: *lng}
		if coord.Valid() {
			viewer.Coord = &coord
		} else {
			slogger.Warn("ignoring invalid coordinates",
				slog.Float64("lat", *lat),
				slog.Float64("lng", *lng))
		}
	}

	api := buildProductAPI(cfg, slogger)

	if err := run(ctx, cfg, slogger, api, viewer, *mode, *query, *pages); err != nil {
		slogger.Error("command failed", slog.String("error", err.Error()))
		if backend.IsAuthError(err) {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}
		os.Exit(1)
	}
}

func buildProductAPI(cfg *config.Config, slogger *slog.Logger) ports.ProductAPI {
	store := tokenstore.NewFileStore(cfg.Tokens.FilePath)
	session := backend.NewAuthSession(store, slogger)

	client := backend.NewClient(backend.Config{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		UserAgent:         cfg.Backend.UserAgent,
	}, session, slogger)

	var cache ports.CacheRepository
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = redis_a.NewCache(rdb, cfg.Redis.TTL, slogger)
	}

	return backend.NewProductClient(client, cache, cfg.Redis.TTL, slogger)
}

func run(ctx context.Context, cfg *config.Config, slogger *slog.Logger, api ports.ProductAPI,
	viewer services.Viewer, mode, query string, pages int) error {

	if mode == "home" {
		home := services.NewHomeFeedService(api, services.HomeConfig{
			ForYouLimit:        cfg.Home.ForYouLimit,
			NearbyLimit:        cfg.Home.NearbyLimit,
			NewArrivalsLimit:   cfg.Home.NewArrivalsLimit,
			ExploreLimit:       cfg.Home.ExploreLimit,
			NearbyRadiusMeters: cfg.Home.NearbyRadiusMeters,
		}, slogger)

		feed, err := home.Load(ctx, viewer, true)
		if err != nil {
			return err
		}
		return printJSON(feed)
	}

	origin := services.OriginSearch
	switch mode {
	case "nearYou":
		origin = services.OriginNearYou
	case "forYou":
		origin = services.OriginForYou
	case "search":
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	session := services.NewSearchSession(api, services.SearchConfig{
		PageSize:            cfg.Search.PageSize,
		LoadMoreDelay:       cfg.Search.LoadMoreDelay,
		NearYouRadiusMeters: cfg.Search.NearYouRadiusMeters,
		NearMeMaxKm:         cfg.Search.NearMeMaxKm,
		SearchLimit:         cfg.Search.SearchLimit,
		FallbackOrigin:      domain.Coordinate{Lat: cfg.Search.FallbackLat, Lng: cfg.Search.FallbackLng},
	}, viewer, origin, slogger)

	if err := session.Refetch(ctx, &query); err != nil {
		return err
	}
	for i := 1; i < pages; i++ {
		if err := session.LoadMore(ctx); err != nil {
			return err
		}
	}

	state := session.State()
	slogger.Info("search completed",
		slog.Int("visible", len(state.Items)),
		slog.Int("total", state.Total),
		slog.Bool("is_end", state.IsEnd),
		slog.Bool("fallback_origin", state.UsedFallbackOrigin))

	return printJSON(state.Items)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
