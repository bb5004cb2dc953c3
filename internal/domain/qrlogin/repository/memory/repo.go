// Package memory implements the session repository as an in-memory
// key-value store with atomic per-record updates. Sessions are
// ephemeral (minutes); persistence would add nothing but a slower
// failure mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
)

// record wraps one session with its own lock so updates to different
// sessions never contend
type record struct {
	mu      sync.Mutex
	session entities.QRSession
}

// sessionRepository implements deps.SessionRepository
type sessionRepository struct {
	mu          sync.RWMutex
	records     map[string]*record
	maxSessions int
	logger      zerolog.Logger
}

// NewRepository creates a new in-memory session repository
func NewRepository(maxSessions int, logger zerolog.Logger) deps.SessionRepository {
	return &sessionRepository{
		records:     make(map[string]*record),
		maxSessions: maxSessions,
		logger:      logger.With().Str("component", "session_repository").Logger(),
	}
}

// Create stores a new session
func (r *sessionRepository) Create(ctx context.Context, session *entities.QRSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) >= r.maxSessions {
		return qrerrors.ErrMaxSessionsReached
	}

	if _, exists := r.records[session.ID]; exists {
		return qrerrors.ErrSessionExists
	}

	r.records[session.ID] = &record{session: *session}
	r.logger.Debug().Str("session_id", session.ID).Msg("session stored")
	return nil
}

// Get returns a snapshot copy of the session
func (r *sessionRepository) Get(ctx context.Context, sessionID string) (entities.QRSession, error) {
	rec, err := r.lookup(sessionID)
	if err != nil {
		return entities.QRSession{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.session, nil
}

// Update applies mutate to a working copy under the record lock and
// commits the copy only when mutate returns nil. The returned snapshot
// reflects the committed state (or the untouched stored state when
// mutate failed).
func (r *sessionRepository) Update(ctx context.Context, sessionID string, mutate func(*entities.QRSession) error) (entities.QRSession, error) {
	rec, err := r.lookup(sessionID)
	if err != nil {
		return entities.QRSession{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	working := rec.session
	if err := mutate(&working); err != nil {
		return rec.session, err
	}

	rec.session = working
	return working, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[sessionID]; exists {
		delete(r.records, sessionID)
		r.logger.Debug().Str("session_id", sessionID).Msg("session deleted")
	}
	return nil
}

// ExpiredIDs lists sessions whose deadline has passed
func (r *sessionRepository) ExpiredIDs(now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, rec := range r.records {
		rec.mu.Lock()
		due := rec.session.DeadlinePassed(now)
		rec.mu.Unlock()
		if due {
			ids = append(ids, id)
		}
	}
	return ids
}

// Count returns the number of stored sessions
func (r *sessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *sessionRepository) lookup(sessionID string) (*record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[sessionID]
	if !exists {
		return nil, qrerrors.ErrSessionNotFound
	}
	return rec, nil
}
