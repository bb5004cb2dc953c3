// Package business implements the QR login handshake: session
// lifecycle, the authorize/finalize transitions, verifier checking and
// expiry. All mutation goes through the repository's atomic update so
// racing callers (phone, desktop, sweeper) serialize per session.
package business

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/config"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/verifier"
	"github.com/medcall/clinic-queue/auth-service/internal/infrastructure/metrics"
	"github.com/medcall/clinic-queue/auth-service/internal/utils"
)

const sessionIDBytes = 32 // 256 bits of entropy in the QR payload

// finalizeOutcome records what the atomic finalize update decided, so
// the post-commit side effects (events, metrics, errors) happen outside
// the record lock.
type finalizeOutcome int

const (
	outcomeNone finalizeOutcome = iota
	outcomeCompleted
	outcomeMismatch
	outcomeRateLimited
)

// QRLoginUseCase implements deps.QRLoginService
type QRLoginUseCase struct {
	repo    deps.SessionRepository
	bus     deps.EventBus
	mirror  deps.EventMirror
	tickets deps.TicketIssuer
	qr      deps.QREncoder
	staff   deps.StaffDirectory
	metrics *metrics.Metrics
	cfg     *config.QRLoginConfig
	logger  zerolog.Logger
	nowTime func() time.Time
}

// Option configures the use case
type Option func(*QRLoginUseCase)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(uc *QRLoginUseCase) {
		uc.nowTime = nowFunc
	}
}

// NewQRLoginUseCase creates a new QR login use case
func NewQRLoginUseCase(
	repo deps.SessionRepository,
	bus deps.EventBus,
	mirror deps.EventMirror,
	tickets deps.TicketIssuer,
	qrEncoder deps.QREncoder,
	staff deps.StaffDirectory,
	m *metrics.Metrics,
	cfg *config.QRLoginConfig,
	logger zerolog.Logger,
	options ...Option,
) *QRLoginUseCase {
	uc := &QRLoginUseCase{
		repo:    repo,
		bus:     bus,
		mirror:  mirror,
		tickets: tickets,
		qr:      qrEncoder,
		staff:   staff,
		metrics: m,
		cfg:     cfg,
		logger:  logger.With().Str("usecase", "qrlogin").Logger(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// Init creates a pending session and renders its QR payload
func (uc *QRLoginUseCase) Init(ctx context.Context) (*entities.SessionHandle, error) {
	now := uc.nowTime()

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	code, err := verifier.Generate()
	if err != nil {
		return nil, err
	}

	session := &entities.QRSession{
		ID:           id,
		VerifierCode: code,
		State:        entities.StatePending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(uc.cfg.SessionTTL),
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	qrURL := uc.sessionURL(id)
	png, err := uc.qr.EncodePNGBase64(qrURL)
	if err != nil {
		// The session is unusable without its QR; do not leak it.
		_ = uc.repo.Delete(ctx, id)
		return nil, fmt.Errorf("failed to render qr payload: %w", err)
	}

	uc.metrics.SessionsStarted.Inc()
	uc.metrics.ActiveSessions.Set(float64(uc.repo.Count()))

	uc.logger.Info().
		Str("session_id", utils.MaskSessionID(id)).
		Time("expires_at", session.ExpiresAt).
		Msg("qr login session created")

	return &entities.SessionHandle{
		SessionID:    id,
		QRURL:        qrURL,
		QRCodeBase64: png,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// Authorize attaches a staff user to a pending session and notifies the
// waiting desktop. Duplicate retries by the same user are accepted
// without re-publishing.
func (uc *QRLoginUseCase) Authorize(ctx context.Context, sessionID, userID string) (*entities.AuthorizeResult, error) {
	if userID == "" {
		return nil, qrerrors.ErrUserNotFound
	}

	exists, err := uc.staff.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("staff directory lookup: %w", err)
	}
	if !exists {
		return nil, qrerrors.ErrUserNotFound
	}

	now := uc.nowTime()
	if err := uc.failIfExpired(ctx, sessionID, now); err != nil {
		return nil, err
	}

	var changed bool
	snapshot, err := uc.repo.Update(ctx, sessionID, func(s *entities.QRSession) error {
		var aerr error
		changed, aerr = s.Authorize(userID, now)
		return aerr
	})
	if err != nil {
		// The deadline may have passed between the check and the
		// update; make the stored state agree before reporting it.
		if err == qrerrors.ErrSessionExpired {
			uc.expireSession(ctx, sessionID, now)
		}
		return nil, err
	}

	if changed {
		uc.metrics.SessionsAuthorized.Inc()
		uc.publish(ctx, entities.Event{
			ID:        uuid.New().String(),
			Kind:      entities.EventAuthorizationComplete,
			SessionID: sessionID,
			At:        now,
		})

		uc.logger.Info().
			Str("session_id", utils.MaskSessionID(sessionID)).
			Str("user_id", userID).
			Msg("session authorized")
	}

	return &entities.AuthorizeResult{
		SessionID:    sessionID,
		State:        snapshot.State,
		VerifierCode: snapshot.VerifierCode,
	}, nil
}

// Finalize completes the login if the typed code matches the stored
// verifier. Wrong codes leave the session authorized and retryable up
// to the configured attempt cap.
func (uc *QRLoginUseCase) Finalize(ctx context.Context, sessionID, verifierInput string) (*entities.LoginResult, error) {
	now := uc.nowTime()
	started := time.Now()
	defer func() {
		uc.metrics.FinalizeDuration.Observe(time.Since(started).Seconds())
	}()

	if err := uc.failIfExpired(ctx, sessionID, now); err != nil {
		return nil, err
	}

	candidate := verifier.Normalize(verifierInput)

	var outcome finalizeOutcome
	snapshot, err := uc.repo.Update(ctx, sessionID, func(s *entities.QRSession) error {
		if err := s.CheckFinalizable(now); err != nil {
			return err
		}

		if uc.cfg.MaxVerifierAttempts > 0 && s.WrongAttempts >= uc.cfg.MaxVerifierAttempts {
			outcome = outcomeRateLimited
			return nil
		}

		if !verifier.Match(s.VerifierCode, candidate) {
			s.WrongAttempts++
			s.UpdatedAt = now
			outcome = outcomeMismatch
			return nil
		}

		if err := s.Complete(now); err != nil {
			return err
		}
		outcome = outcomeCompleted
		return nil
	})
	if err != nil {
		if err == qrerrors.ErrSessionExpired {
			uc.expireSession(ctx, sessionID, now)
		}
		return nil, err
	}

	switch outcome {
	case outcomeRateLimited:
		uc.metrics.RateLimited.Inc()
		uc.logger.Warn().
			Str("session_id", utils.MaskSessionID(sessionID)).
			Msg("finalize rejected, verifier attempt cap reached")
		return nil, qrerrors.ErrRateLimited

	case outcomeMismatch:
		uc.metrics.VerifierMismatches.Inc()
		uc.logger.Warn().
			Str("session_id", utils.MaskSessionID(sessionID)).
			Int("wrong_attempts", snapshot.WrongAttempts).
			Msg("verifier code mismatch")
		return nil, qrerrors.ErrVerifierMismatch
	}

	ticket, err := uc.tickets.Issue(snapshot.AuthorizedUserID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue login ticket: %w", err)
	}

	uc.metrics.SessionsCompleted.Inc()
	uc.publish(ctx, entities.Event{
		ID:        uuid.New().String(),
		Kind:      entities.EventLoginComplete,
		SessionID: sessionID,
		UserID:    snapshot.AuthorizedUserID,
		At:        now,
	})

	uc.logger.Info().
		Str("session_id", utils.MaskSessionID(sessionID)).
		Str("user_id", snapshot.AuthorizedUserID).
		Msg("qr login completed")

	return &entities.LoginResult{
		SessionID: sessionID,
		UserID:    snapshot.AuthorizedUserID,
		Ticket:    ticket,
	}, nil
}

// Status reports the current state, applying the lazy expiry check
func (uc *QRLoginUseCase) Status(ctx context.Context, sessionID string) (*entities.StatusInfo, error) {
	now := uc.nowTime()

	session, err := uc.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Terminal() && session.DeadlinePassed(now) {
		session = uc.expireSession(ctx, sessionID, now)
	}

	info := &entities.StatusInfo{
		SessionID: sessionID,
		State:     session.State,
		ExpiresAt: session.ExpiresAt,
	}
	if session.State == entities.StateCompleted {
		info.UserID = session.AuthorizedUserID
	}
	return info, nil
}

// Cancel expires a session early (desktop dialog closed). A finished
// login cannot be cancelled; cancelling an already-expired session is
// an accepted no-op.
func (uc *QRLoginUseCase) Cancel(ctx context.Context, sessionID string) error {
	now := uc.nowTime()

	session, err := uc.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.State == entities.StateCompleted {
		return qrerrors.ErrAlreadyCompleted
	}

	var changed bool
	_, err = uc.repo.Update(ctx, sessionID, func(s *entities.QRSession) error {
		if s.State == entities.StateCompleted {
			return qrerrors.ErrAlreadyCompleted
		}
		changed = s.Expire(now)
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		uc.metrics.SessionsCancelled.Inc()
		uc.publish(ctx, entities.Event{
			ID:        uuid.New().String(),
			Kind:      entities.EventExpired,
			SessionID: sessionID,
			At:        now,
		})

		uc.logger.Info().
			Str("session_id", utils.MaskSessionID(sessionID)).
			Msg("session cancelled")
	}
	return nil
}

// Subscribe attaches to the session's event stream
func (uc *QRLoginUseCase) Subscribe(ctx context.Context, sessionID string) (<-chan entities.Event, func(), error) {
	if _, err := uc.repo.Get(ctx, sessionID); err != nil {
		return nil, nil, err
	}

	ch, cancel := uc.bus.Subscribe(ctx, sessionID)
	return ch, cancel, nil
}

// ExpireDue is the active sweep: expire sessions past the deadline and
// drop terminal records past the grace period. Lazy per-access checks
// keep correctness independent of this; the sweep frees memory and
// wakes idle subscribers sooner.
func (uc *QRLoginUseCase) ExpireDue(ctx context.Context, now time.Time) int {
	expired := 0
	for _, id := range uc.repo.ExpiredIDs(now) {
		session, err := uc.repo.Get(ctx, id)
		if err != nil {
			continue // already swept by a concurrent pass
		}

		if !session.Terminal() {
			uc.expireSession(ctx, id, now)
			expired++
		}

		if now.After(session.ExpiresAt.Add(uc.cfg.GracePeriod)) {
			_ = uc.repo.Delete(ctx, id)
		}
	}

	uc.metrics.ActiveSessions.Set(float64(uc.repo.Count()))
	return expired
}

// failIfExpired applies the lazy expiry check every operation runs
// before touching a session. It commits the expired transition so the
// stored state, the event stream and the returned error agree.
func (uc *QRLoginUseCase) failIfExpired(ctx context.Context, sessionID string, now time.Time) error {
	session, err := uc.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.State == entities.StateExpired {
		return qrerrors.ErrSessionExpired
	}

	if !session.Terminal() && session.DeadlinePassed(now) {
		uc.expireSession(ctx, sessionID, now)
		return qrerrors.ErrSessionExpired
	}

	return nil
}

// expireSession commits the expired transition and publishes the event
// exactly once (only the caller whose update flipped the state emits)
func (uc *QRLoginUseCase) expireSession(ctx context.Context, sessionID string, now time.Time) entities.QRSession {
	var changed bool
	snapshot, err := uc.repo.Update(ctx, sessionID, func(s *entities.QRSession) error {
		changed = s.Expire(now)
		return nil
	})
	if err != nil {
		return snapshot
	}

	if changed {
		uc.metrics.SessionsExpired.Inc()
		uc.publish(ctx, entities.Event{
			ID:        uuid.New().String(),
			Kind:      entities.EventExpired,
			SessionID: sessionID,
			At:        now,
		})
	}
	return snapshot
}

func (uc *QRLoginUseCase) publish(ctx context.Context, event entities.Event) {
	uc.bus.Publish(ctx, event.SessionID, event)

	if err := uc.mirror.SessionEvent(ctx, event); err != nil {
		uc.logger.Warn().Err(err).
			Str("kind", string(event.Kind)).
			Msg("failed to mirror session event")
	}
}

func (uc *QRLoginUseCase) sessionURL(sessionID string) string {
	return fmt.Sprintf("%s/login/qr?sid=%s", uc.cfg.BaseURL, url.QueryEscape(sessionID))
}

// newSessionID returns an unguessable session identifier
func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Ensure QRLoginUseCase implements deps.QRLoginService
var _ deps.QRLoginService = (*QRLoginUseCase)(nil)
