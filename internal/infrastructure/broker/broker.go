// Package broker is the in-process publish/subscribe channel between
// the handshake state machine and connected desktops. Topics are
// session ids, so unrelated login attempts never cross-talk. It is a
// push optimization only: the status query stays the source of truth.
package broker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
	"github.com/medcall/clinic-queue/auth-service/internal/utils"
)

// subscriberBuffer bounds each subscriber's queue. A session emits at
// most a handful of events, so a full buffer means the consumer is
// gone; the event is dropped rather than blocking the publisher.
const subscriberBuffer = 16

type subscriber struct {
	ch chan entities.Event
}

// Broker implements deps.EventBus
type Broker struct {
	mu     sync.Mutex
	topics map[string][]*subscriber
	logger zerolog.Logger
}

// NewBroker creates a new in-process event broker
func NewBroker(logger zerolog.Logger) *Broker {
	return &Broker{
		topics: make(map[string][]*subscriber),
		logger: logger.With().Str("component", "event_broker").Logger(),
	}
}

// Publish delivers the event to every current subscriber of the
// session. Delivery order matches publish order: the append loop runs
// under the broker lock, so per-session event ordering follows the
// state machine's transition ordering.
func (b *Broker) Publish(ctx context.Context, sessionID string, event entities.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.topics[sessionID] {
		select {
		case sub.ch <- event:
		default:
			b.logger.Warn().
				Str("session_id", utils.MaskSessionID(sessionID)).
				Str("kind", string(event.Kind)).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribe attaches a new subscriber to the session's topic. The
// returned cancel func releases the subscription; it also fires when
// ctx is done, so an abandoned stream cannot leak a listener. Events
// published before the subscription are not replayed.
func (b *Broker) Subscribe(ctx context.Context, sessionID string) (<-chan entities.Event, func()) {
	sub := &subscriber{ch: make(chan entities.Event, subscriberBuffer)}

	b.mu.Lock()
	b.topics[sessionID] = append(b.topics[sessionID], sub)
	b.mu.Unlock()

	var once sync.Once
	released := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			b.remove(sessionID, sub)
			close(sub.ch)
			close(released)
		})
	}

	// The watcher exits on explicit cancel too, not just ctx
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				cancel()
			case <-released:
			}
		}()
	}

	return sub.ch, cancel
}

// SubscriberCount reports how many listeners a session currently has
func (b *Broker) SubscriberCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[sessionID])
}

func (b *Broker) remove(sessionID string, target *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sessionID]
	for i, sub := range subs {
		if sub == target {
			b.topics[sessionID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	if len(b.topics[sessionID]) == 0 {
		delete(b.topics, sessionID)
	}
}
