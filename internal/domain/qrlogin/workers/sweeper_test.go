package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
)

// sweepServiceMock counts ExpireDue calls; the other operations are
// never reached by the sweeper
type sweepServiceMock struct {
	calls atomic.Int32
}

func (m *sweepServiceMock) ExpireDue(_ context.Context, _ time.Time) int {
	m.calls.Add(1)
	return 0
}

func (m *sweepServiceMock) Init(context.Context) (*entities.SessionHandle, error) { return nil, nil }
func (m *sweepServiceMock) Authorize(context.Context, string, string) (*entities.AuthorizeResult, error) {
	return nil, nil
}
func (m *sweepServiceMock) Finalize(context.Context, string, string) (*entities.LoginResult, error) {
	return nil, nil
}
func (m *sweepServiceMock) Status(context.Context, string) (*entities.StatusInfo, error) {
	return nil, nil
}
func (m *sweepServiceMock) Cancel(context.Context, string) error { return nil }
func (m *sweepServiceMock) Subscribe(context.Context, string) (<-chan entities.Event, func(), error) {
	return nil, nil, nil
}

func TestSweeperRunsPeriodically(t *testing.T) {
	svc := &sweepServiceMock{}
	sweeper := NewSweeper(svc, 10*time.Millisecond, zerolog.Nop())

	sweeper.Start()

	deadline := time.After(time.Second)
	for svc.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 3 sweeps, got %d", svc.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	sweeper.Stop()
}

func TestSweeperStopsCleanly(t *testing.T) {
	svc := &sweepServiceMock{}
	sweeper := NewSweeper(svc, 10*time.Millisecond, zerolog.Nop())

	sweeper.Start()
	time.Sleep(25 * time.Millisecond)
	sweeper.Stop()

	after := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if svc.calls.Load() != after {
		t.Error("Sweeper kept running after Stop")
	}

	// Stop is idempotent
	sweeper.Stop()
}
