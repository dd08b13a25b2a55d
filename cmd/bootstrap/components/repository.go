package components

import (
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/usecase/commands"
	"vinyl-reserve/internal/usecase/validator"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		uow.NewPostgresUoW,
		repository.NewRecordRepository,
		repository.NewReservationRepository,
		repository.NewQueueRepository,
		repository.NewCartRepository,
		repository.NewAuditRepository,
		fx.Annotate(
			repository.NewRecordRepository,
			fx.As(new(commands.RecordStore)),
		),
		fx.Annotate(
			repository.NewReservationRepository,
			fx.As(new(commands.ReservationStore)),
		),
		fx.Annotate(
			repository.NewQueueRepository,
			fx.As(new(commands.QueueStore)),
		),
		fx.Annotate(
			repository.NewCartRepository,
			fx.As(new(commands.CartStore)),
			fx.As(new(validator.CartStore)),
		),
		fx.Annotate(
			repository.NewAuditRepository,
			fx.As(new(commands.AuditStore)),
		),
	),
)
