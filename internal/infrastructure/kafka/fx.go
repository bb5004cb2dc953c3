package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/medcall/clinic-queue/auth-service/config"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/metrics"
)

// Module provides the session event mirror for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewEventMirrorFx),
)

// NewEventMirrorFx creates the Kafka mirror when brokers are configured
// and falls back to the no-op mirror otherwise.
func NewEventMirrorFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (deps.EventMirror, error) {
	if !kafkaCfg.Enabled() {
		logger.Info().Msg("Kafka brokers not configured, session events will not be mirrored")
		return NewNoopMirror(), nil
	}

	mirror, err := NewEventMirror(MirrorConfig{
		Brokers: kafkaCfg.Brokers,
		Topic:   kafkaCfg.TopicEvents,
		Logger:  logger.With().Str("component", "event-mirror").Logger(),
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mirror.Close()
		},
	})

	return mirror, nil
}
