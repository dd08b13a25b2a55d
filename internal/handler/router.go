package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vinyl-reserve/internal/handler/api"
	"vinyl-reserve/internal/handler/middleware"
	"vinyl-reserve/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Session  *api.SessionHandler
	Status   *api.StatusHandler
	Cart     *api.CartHandler
	Checkout *api.CheckoutHandler
	Queue    *api.QueueHandler
	Admin    *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/session", Handler: h.Session.Create},
		})

		records := apiGroup.Group("/records")
		records.Use(authMiddleware.OptionalAlias())
		{
			addRoutes(records, []route{
				{Method: http.MethodGet, Path: "/:id/status", Handler: h.Status.GetStatus},
				{Method: http.MethodPost, Path: "/:id/refresh", Handler: h.Status.RefreshRecord},
			})

			queued := records.Group("")
			queued.Use(authMiddleware.RequireAlias())
			addRoutes(queued, []route{
				{Method: http.MethodPost, Path: "/:id/queue", Handler: h.Queue.Join},
				{Method: http.MethodGet, Path: "/:id/queue", Handler: h.Queue.Rank},
				{Method: http.MethodDelete, Path: "/:id/queue", Handler: h.Queue.Leave},
			})
		}

		refresh := apiGroup.Group("")
		refresh.Use(authMiddleware.OptionalAlias())
		addRoutes(refresh, []route{
			{Method: http.MethodPost, Path: "/refresh", Handler: h.Status.RefreshAll},
		})

		cartGroup := apiGroup.Group("/cart")
		cartGroup.Use(authMiddleware.RequireAlias())
		{
			addRoutes(cartGroup, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Cart.GetCart},
				{Method: http.MethodPost, Path: "/:id", Handler: h.Cart.AddItem},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Cart.RemoveItem},
			})
		}

		checkoutGroup := apiGroup.Group("/checkout")
		checkoutGroup.Use(authMiddleware.RequireAlias())
		{
			addRoutes(checkoutGroup, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Checkout.Checkout},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAlias())
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/records/:id/sold", Handler: h.Admin.MarkRecordSold},
				{Method: http.MethodPost, Path: "/reservations/:id/expire", Handler: h.Admin.ExpireReservation},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
