package kafka

import (
	"context"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
)

// NoopMirror satisfies the mirror contract when no brokers are
// configured. Single-node clinic deployments run this way.
type NoopMirror struct{}

func NewNoopMirror() *NoopMirror {
	return &NoopMirror{}
}

func (NoopMirror) SessionEvent(_ context.Context, _ entities.Event) error { return nil }

func (NoopMirror) Healthy() bool { return true }

func (NoopMirror) Close() error { return nil }
