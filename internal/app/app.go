package app

import (
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/config"
	deliveryhttp "github.com/medcall/clinic-queue/auth-service/internal/delivery/http"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Out,
		),
		infrastructure.Module,
		// Domain modules
		staff.Module, // Must be before qrlogin.Module (login checks the staff directory)
		qrlogin.Module,
		deliveryhttp.Module,
	)
}
