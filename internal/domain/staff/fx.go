package staff

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	qrdeps "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	staffhttp "github.com/medcall/clinic-queue/auth-service/internal/domain/staff/delivery/http"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/repository/memory"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/http/server"
)

// Module provides the staff directory for fx DI
var Module = fx.Module("staff",
	fx.Provide(NewDirectoryFx),
	fx.Provide(NewStaffHandlerFx),
	fx.Provide(NewStaffRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewDirectoryFx creates the staff directory for fx DI. The same
// instance backs the login flow's existence checks.
func NewDirectoryFx(logger zerolog.Logger) (deps.Directory, qrdeps.StaffDirectory) {
	d := memory.NewDirectory(logger)
	return d, d
}

// NewStaffHandlerFx creates the staff handler for fx DI
func NewStaffHandlerFx(directory deps.Directory, logger zerolog.Logger) *staffhttp.StaffHandler {
	return staffhttp.NewStaffHandler(directory, logger)
}

// NewStaffRouterFx creates the staff router for fx DI
func NewStaffRouterFx(handler *staffhttp.StaffHandler, logger zerolog.Logger) *staffhttp.Router {
	return staffhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers staff routes on the server
func RegisterRoutes(server *server.Server, router *staffhttp.Router) {
	router.RegisterRoutes(server.Router)
}
