package qrlogin

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/config"
	qrhttp "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/delivery/http"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/repository/memory"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/usecase/business"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/workers"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/http/server"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/metrics"
)

// Module provides QR login components for fx DI
var Module = fx.Module("qrlogin",
	fx.Provide(NewSessionRepositoryFx),
	fx.Provide(NewQRLoginUseCaseFx),
	fx.Provide(NewQRLoginHandlerFx),
	fx.Provide(NewQRLoginRouterFx),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RegisterSweeper),
)

// NewSessionRepositoryFx creates the session repository for fx DI
func NewSessionRepositoryFx(cfg *config.QRLoginConfig, logger zerolog.Logger) deps.SessionRepository {
	return memory.NewRepository(cfg.MaxSessions, logger)
}

// NewQRLoginUseCaseFx creates the QR login use case for fx DI
func NewQRLoginUseCaseFx(
	repo deps.SessionRepository,
	bus deps.EventBus,
	mirror deps.EventMirror,
	tickets deps.TicketIssuer,
	qrEncoder deps.QREncoder,
	staff deps.StaffDirectory,
	m *metrics.Metrics,
	cfg *config.QRLoginConfig,
	logger zerolog.Logger,
) deps.QRLoginService {
	return business.NewQRLoginUseCase(repo, bus, mirror, tickets, qrEncoder, staff, m, cfg, logger)
}

// NewQRLoginHandlerFx creates the QR login handler for fx DI
func NewQRLoginHandlerFx(useCase deps.QRLoginService, logger zerolog.Logger) *qrhttp.QRLoginHandler {
	return qrhttp.NewQRLoginHandler(useCase, logger)
}

// NewQRLoginRouterFx creates the QR login router for fx DI
func NewQRLoginRouterFx(handler *qrhttp.QRLoginHandler, logger zerolog.Logger) *qrhttp.Router {
	return qrhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers QR login routes on the server
func RegisterRoutes(server *server.Server, router *qrhttp.Router) {
	router.RegisterRoutes(server.Router)
}

// RegisterSweeper starts the session sweeper with lifecycle hooks
func RegisterSweeper(
	lc fx.Lifecycle,
	service deps.QRLoginService,
	cfg *config.QRLoginConfig,
	logger zerolog.Logger,
) {
	sweeper := workers.NewSweeper(service, cfg.SweepInterval, logger)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
