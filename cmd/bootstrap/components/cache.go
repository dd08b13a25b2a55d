package components

import (
	"context"
	"log/slog"

	"vinyl-reserve/internal/cache"
	"vinyl-reserve/internal/infra/feed"
	"vinyl-reserve/internal/infra/statussource"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/config"
	"vinyl-reserve/internal/usecase/commands"
	"vinyl-reserve/internal/usecase/queries"
	"vinyl-reserve/internal/usecase/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		fx.Annotate(
			statussource.NewSource,
			fx.As(new(cache.FactsSource)),
		),
		NewStatusCache,
		func(c *cache.StatusCache) queries.StatusCache { return c },
		func(c *cache.StatusCache) commands.StatusRefresher { return c },
		func(c *cache.StatusCache) validator.StatusView { return c },
		NewFeedListener,
	),
	fx.Invoke(StartFeedListener),
)

func NewStatusCache(source cache.FactsSource, clk clock.Clock, cfg config.Config, logger *slog.Logger) (*cache.StatusCache, error) {
	return cache.NewStatusCache(source, clk, cfg.Engine.CartViewCacheSize, logger)
}

func NewFeedListener(pool *pgxpool.Pool, cfg config.Config, statusCache *cache.StatusCache, logger *slog.Logger) *feed.Listener {
	return feed.NewListener(pool, cfg.Engine.FeedChannel, cfg.Engine.FeedRetryInterval, statusCache, logger)
}

func StartFeedListener(lc fx.Lifecycle, listener *feed.Listener) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go listener.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
