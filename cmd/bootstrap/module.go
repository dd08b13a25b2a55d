package bootstrap

import (
	"vinyl-reserve/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	components.RepositoryModule,
	components.CacheModule,
	components.UseCaseModule,
	components.HandlerModule,
)
