package broker

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
)

func testEvent(sessionID string, kind entities.EventKind, seq int) entities.Event {
	return entities.Event{
		ID:        fmt.Sprintf("evt-%d", seq),
		Kind:      kind,
		SessionID: sessionID,
		At:        time.Now(),
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx := context.Background()

	ch, cancel := b.Subscribe(ctx, "session-1")
	defer cancel()

	b.Publish(ctx, "session-1", testEvent("session-1", entities.EventAuthorizationComplete, 1))

	select {
	case got := <-ch:
		if got.Kind != entities.EventAuthorizationComplete {
			t.Errorf("Expected authorization_complete, got %s", got.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestDeliveryOrder(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx := context.Background()

	ch, cancel := b.Subscribe(ctx, "session-1")
	defer cancel()

	b.Publish(ctx, "session-1", testEvent("session-1", entities.EventAuthorizationComplete, 1))
	b.Publish(ctx, "session-1", testEvent("session-1", entities.EventLoginComplete, 2))

	first := <-ch
	second := <-ch
	if first.Kind != entities.EventAuthorizationComplete || second.Kind != entities.EventLoginComplete {
		t.Errorf("Events out of order: %s, %s", first.Kind, second.Kind)
	}
}

func TestTopicIsolation(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx := context.Background()

	ch1, cancel1 := b.Subscribe(ctx, "session-1")
	defer cancel1()
	ch2, cancel2 := b.Subscribe(ctx, "session-2")
	defer cancel2()

	b.Publish(ctx, "session-1", testEvent("session-1", entities.EventLoginComplete, 1))

	select {
	case <-ch1:
	case <-time.After(time.Second):
		t.Fatal("Subscriber of session-1 did not get its event")
	}

	select {
	case got := <-ch2:
		t.Errorf("Subscriber of session-2 got foreign event %s", got.Kind)
	default:
	}
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx := context.Background()

	b.Publish(ctx, "session-1", testEvent("session-1", entities.EventAuthorizationComplete, 1))

	ch, cancel := b.Subscribe(ctx, "session-1")
	defer cancel()

	select {
	case got := <-ch:
		t.Errorf("Late subscriber must not see past events, got %s", got.Kind)
	default:
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx := context.Background()

	ch, cancel := b.Subscribe(ctx, "session-1")
	if b.SubscriberCount("session-1") != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", b.SubscriberCount("session-1"))
	}

	cancel()
	if b.SubscriberCount("session-1") != 0 {
		t.Errorf("Expected 0 subscribers after cancel, got %d", b.SubscriberCount("session-1"))
	}

	// The channel is closed so a ranging consumer terminates
	if _, open := <-ch; open {
		t.Error("Expected channel to be closed after cancel")
	}

	// Cancel is idempotent
	cancel()
}

func TestExplicitCancelStopsContextWatcher(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	before := runtime.NumGoroutine()
	_, cancel := b.Subscribe(ctx, "session-1")
	cancel()

	// The watcher must exit on explicit cancel even though ctx lives on
	deadline := time.After(time.Second)
	for runtime.NumGoroutine() > before {
		select {
		case <-deadline:
			t.Fatalf("Watcher goroutine still running after cancel: %d > %d",
				runtime.NumGoroutine(), before)
		case <-time.After(5 * time.Millisecond):
		}
	}

	// A late context cancellation is a no-op
	cancelCtx()
	if b.SubscriberCount("session-1") != 0 {
		t.Errorf("Expected 0 subscribers, got %d", b.SubscriberCount("session-1"))
	}
}

func TestContextCancelReleasesSubscriber(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx, cancelCtx := context.WithCancel(context.Background())

	_, cancel := b.Subscribe(ctx, "session-1")
	defer cancel()

	cancelCtx()

	deadline := time.After(time.Second)
	for b.SubscriberCount("session-1") != 0 {
		select {
		case <-deadline:
			t.Fatal("Subscriber not released after context cancellation")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	ctx := context.Background()

	_, cancel := b.Subscribe(ctx, "session-1")
	defer cancel()

	// Overflow the buffer; Publish must return anyway
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(ctx, "session-1", testEvent("session-1", entities.EventExpired, i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
