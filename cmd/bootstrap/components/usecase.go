package components

import (
	"context"
	"log/slog"

	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/config"
	"vinyl-reserve/internal/pkg/keyedmutex"
	"vinyl-reserve/internal/usecase/commands"
	"vinyl-reserve/internal/usecase/queries"
	"vinyl-reserve/internal/usecase/validator"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseValidatorModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	keyedmutex.New,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewQueueCommands,
		NewCheckoutCommands,
		commands.NewCartCommands,
		commands.NewAdminCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewStatusQueries,
	),
)

var usecaseValidatorModule = fx.Module("usecase/validator",
	fx.Provide(
		NewCartValidator,
		func(v *validator.CartValidator) commands.CartRevalidator { return v },
	),
	fx.Invoke(StartCartValidator),
)

func NewQueueCommands(
	u uow.UnitOfWork,
	records commands.RecordStore,
	reservations commands.ReservationStore,
	queues commands.QueueStore,
	audit commands.AuditStore,
	refresher commands.StatusRefresher,
	revalidator commands.CartRevalidator,
	locks *keyedmutex.KeyedMutex,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) commands.QueueCommands {
	return commands.NewQueueCommands(
		u, records, reservations, queues, audit, refresher, revalidator,
		locks, clk, cfg.Engine.QueueMaxPerRecord, logger,
	)
}

func NewCheckoutCommands(
	u uow.UnitOfWork,
	records commands.RecordStore,
	reservations commands.ReservationStore,
	queues commands.QueueStore,
	carts commands.CartStore,
	audit commands.AuditStore,
	queueCommands commands.QueueCommands,
	refresher commands.StatusRefresher,
	revalidator commands.CartRevalidator,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) commands.CheckoutCommands {
	return commands.NewCheckoutCommands(
		u, records, reservations, queues, carts, audit, queueCommands,
		refresher, revalidator, clk, cfg.Engine.ReservationTTL, logger,
	)
}

func NewCartValidator(
	u uow.UnitOfWork,
	carts validator.CartStore,
	view validator.StatusView,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *validator.CartValidator {
	return validator.NewCartValidator(u, carts, view, clk, cfg.Engine.RevalidateInterval, logger)
}

func StartCartValidator(lc fx.Lifecycle, v *validator.CartValidator) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go v.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
