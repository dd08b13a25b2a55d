package components

import (
	"vinyl-reserve/internal/handler"
	"vinyl-reserve/internal/handler/api"
	"vinyl-reserve/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSessionHandler,
		api.NewStatusHandler,
		api.NewCartHandler,
		api.NewCheckoutHandler,
		api.NewQueueHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	session *api.SessionHandler,
	status *api.StatusHandler,
	cart *api.CartHandler,
	checkout *api.CheckoutHandler,
	queue *api.QueueHandler,
	admin *api.AdminHandler,
) handler.Handlers {
	return handler.Handlers{
		Session:  session,
		Status:   status,
		Cart:     cart,
		Checkout: checkout,
		Queue:    queue,
		Admin:    admin,
	}
}
