package ticket

import (
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/config"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
)

// Module provides the login ticket issuer for fx DI
var Module = fx.Module("ticket",
	fx.Provide(func(cfg *config.TicketConfig) deps.TicketIssuer {
		return NewIssuer(cfg)
	}),
)
