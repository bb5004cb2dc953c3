package http

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/config"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/http/server"
)

// Module registers service-level HTTP endpoints
var Module = fx.Module("delivery-http",
	fx.Invoke(RegisterHealth),
)

// RegisterHealth wires the health endpoint onto the server
func RegisterHealth(
	srv *server.Server,
	sessions deps.SessionRepository,
	mirror deps.EventMirror,
	cfg *config.QRLoginConfig,
	logger zerolog.Logger,
) {
	handler := NewHealthHandler(sessions, mirror, cfg.MaxSessions, logger.With().Str("handler", "health").Logger())
	srv.Router.GET("/health", handler.Handle)
}
