package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/pkg/httputil"
)

// Router registers staff directory HTTP routes
type Router struct {
	handler *StaffHandler
	logger  zerolog.Logger
}

// NewRouter creates a new staff router
func NewRouter(handler *StaffHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers staff routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	group := httputil.NewMiddlewareGroup(rt.Group("/api/v1")).
		Use(httputil.RequestID(), httputil.AccessLog(r.logger))

	group.POST("/staff", r.handler.Register)
	group.GET("/staff", r.handler.List)
	group.GET("/staff/{staff_id}", r.handler.Get)

	r.logger.Info().Msg("Staff routes registered")
}
