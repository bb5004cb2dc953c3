package qr

import (
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
)

// Module provides the QR encoder for fx DI
var Module = fx.Module("qr",
	fx.Provide(func() deps.QREncoder {
		return NewEncoder()
	}),
)
