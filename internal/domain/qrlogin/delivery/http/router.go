package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/pkg/httputil"
)

// Router registers QR login HTTP routes
type Router struct {
	handler *QRLoginHandler
	logger  zerolog.Logger
}

// NewRouter creates a new QR login router
func NewRouter(handler *QRLoginHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers QR login routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	group := httputil.NewMiddlewareGroup(rt.Group("/api/v1/auth/qr")).
		Use(httputil.RequestID(), httputil.AccessLog(r.logger))

	group.POST("/init", r.handler.Init)
	group.POST("/{session_id}/authorize", r.handler.Authorize)
	group.POST("/{session_id}/finalize", r.handler.Finalize)
	group.POST("/{session_id}/cancel", r.handler.Cancel)
	group.GET("/{session_id}/status", r.handler.Status)
	group.GET("/{session_id}/events", r.handler.Events)

	r.logger.Info().Msg("QR login routes registered")
}
