// Package workers contains background workers for the qrlogin domain
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
)

// Sweeper periodically expires sessions past their deadline and frees
// terminal sessions past the grace period. It is a backstop: per-access
// expiry checks do not depend on it, so its interval only bounds how
// long an abandoned session occupies memory.
type Sweeper struct {
	service  deps.QRLoginService
	interval time.Duration
	logger   zerolog.Logger

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewSweeper creates a session sweeper
func NewSweeper(service deps.QRLoginService, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger.With().Str("component", "session-sweeper").Logger(),
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine
func (s *Sweeper) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting session sweeper")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				s.logger.Info().Msg("Session sweeper stopped")
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight sweep
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

func (s *Sweeper) sweep() {
	expired := s.service.ExpireDue(context.Background(), time.Now())
	if expired > 0 {
		s.logger.Debug().Int("expired", expired).Msg("Sweep expired sessions")
	}
}
