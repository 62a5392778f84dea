// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/hackreg/internal/handler"
	"github.com/deppfellow/hackreg/internal/middleware"
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with every middleware and route.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	return NewRouterWithMiddlewares(s, h, middleware.NewMiddlewares(s))
}

func NewRouterWithMiddlewares(s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	// Order matters: the request id and transaction exist before the
	// session is resolved, and the logger is enriched after both.
	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Auth.ResolveSession,
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.Secure(),
		mw.Global.CORS(),
		mw.Metrics.Instrument(),
	)

	registerSystemRoutes(router, s, h)
	registerRegistrationRoutes(router, h, mw)

	return router
}

func registerRegistrationRoutes(r *echo.Echo, h *handler.Handlers, mw *middleware.Middlewares) {
	r.GET("/register", h.Registration.Load)
	r.POST("/register", h.Registration.SubmitRoute(), mw.RateLimit.Limit())

	r.GET(handler.ConfirmedPath, h.Account.Confirmed)
	r.GET(handler.LoginPath, h.Account.Login)

	api := r.Group("/api/v1", mw.Auth.RequireAuth)
	api.GET("/me", handler.Handle(h.Account.Handler, h.Account.Me, http.StatusOK, &handler.MeRequest{}))
}
