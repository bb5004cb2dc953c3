package broker

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
)

// Module provides the in-process event bus for fx DI
var Module = fx.Module("broker",
	fx.Provide(NewBrokerFx),
)

// NewBrokerFx creates the event broker for fx DI
func NewBrokerFx(logger zerolog.Logger) (*Broker, deps.EventBus) {
	b := NewBroker(logger)
	return b, b
}
