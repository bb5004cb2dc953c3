package infrastructure

import (
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/broker"
	httpfx "github.com/medcall/clinic-queue/auth-service/internal/infrastructure/http"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/kafka"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/logger"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/metrics"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/qr"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/ticket"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	broker.Module,
	kafka.Module,
	qr.Module,
	ticket.Module,
	httpfx.Module,
)
