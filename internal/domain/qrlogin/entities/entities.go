package entities

import (
	"time"

	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
)

// State represents the lifecycle state of one QR login attempt
type State string

const (
	StatePending    State = "pending"    // QR rendered, waiting for the phone to authorize
	StateAuthorized State = "authorized" // phone attached a user, waiting for the verifier code
	StateCompleted  State = "completed"  // verifier accepted, login finished
	StateExpired    State = "expired"    // deadline passed or cancelled
)

// QRSession is the full record of a single cross-device login attempt.
// The verifier code is generated once at creation and never changes; it
// is shown only on the phone after authorization and must be typed back
// on the desktop that requested the QR.
type QRSession struct {
	ID               string
	VerifierCode     string
	State            State
	AuthorizedUserID string
	AuthorizedAt     *time.Time
	WrongAttempts    int
	CreatedAt        time.Time
	ExpiresAt        time.Time
	UpdatedAt        time.Time
}

// Terminal returns true if no further transition is accepted
func (s *QRSession) Terminal() bool {
	return s.State == StateCompleted || s.State == StateExpired
}

// DeadlinePassed reports whether the absolute validity window has
// elapsed. The stored state may still say pending or authorized; every
// caller must treat such a session as expired.
func (s *QRSession) DeadlinePassed(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Authorize applies the pending -> authorized transition, attaching the
// phone-side user. Re-authorizing with the same user (a duplicate
// network retry) is a no-op and reports changed=false; a different user
// is a conflict. AuthorizedAt is never regressed.
func (s *QRSession) Authorize(userID string, now time.Time) (bool, error) {
	switch s.State {
	case StateCompleted:
		return false, qrerrors.ErrAlreadyCompleted
	case StateExpired:
		return false, qrerrors.ErrSessionExpired
	}

	if s.DeadlinePassed(now) {
		return false, qrerrors.ErrSessionExpired
	}

	if s.State == StateAuthorized {
		if s.AuthorizedUserID == userID {
			return false, nil
		}
		return false, qrerrors.ErrUserConflict
	}

	s.State = StateAuthorized
	s.AuthorizedUserID = userID
	s.AuthorizedAt = &now
	s.UpdatedAt = now
	return true, nil
}

// CheckFinalizable verifies the guards for the authorized -> completed
// transition without applying it. A pure read: every rejection leaves
// the session untouched.
func (s *QRSession) CheckFinalizable(now time.Time) error {
	switch s.State {
	case StateCompleted:
		return qrerrors.ErrAlreadyCompleted
	case StateExpired:
		return qrerrors.ErrSessionExpired
	}

	if s.DeadlinePassed(now) {
		return qrerrors.ErrSessionExpired
	}

	if s.State == StatePending {
		return qrerrors.ErrNotAuthorizedYet
	}

	return nil
}

// Complete applies the authorized -> completed transition. Callers must
// have validated the verifier code first.
func (s *QRSession) Complete(now time.Time) error {
	if err := s.CheckFinalizable(now); err != nil {
		return err
	}

	s.State = StateCompleted
	s.UpdatedAt = now
	return nil
}

// Expire moves a non-terminal session to expired. Terminal sessions are
// left alone; expired never overrides completed. An expired session
// carries no authorized user: the attachment made on the phone is
// discarded, only AuthorizedAt survives for audit.
func (s *QRSession) Expire(now time.Time) bool {
	if s.Terminal() {
		return false
	}

	s.State = StateExpired
	s.AuthorizedUserID = ""
	s.UpdatedAt = now
	return true
}

// EventKind identifies a session lifecycle event
type EventKind string

const (
	EventAuthorizationComplete EventKind = "authorization_complete"
	EventLoginComplete         EventKind = "login_complete"
	EventExpired               EventKind = "expired"
)

// Event is the typed union pushed to subscribers of one session. UserID
// is set only on login_complete.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	At        time.Time `json:"at"`
}

// SessionHandle is what the desktop gets back from init: everything it
// needs to render the QR and wait, and nothing it should not see. The
// verifier code is deliberately absent.
type SessionHandle struct {
	SessionID    string
	QRURL        string
	QRCodeBase64 string
	ExpiresAt    time.Time
}

// AuthorizeResult is returned to the phone-side flow. This is the only
// payload that ever carries the verifier code in plaintext.
type AuthorizeResult struct {
	SessionID    string
	State        State
	VerifierCode string
}

// LoginResult is returned to the desktop on successful finalize
type LoginResult struct {
	SessionID string
	UserID    string
	Ticket    string
}

// StatusInfo is the polling-fallback view of a session. UserID is
// populated only once the session is completed.
type StatusInfo struct {
	SessionID string
	State     State
	UserID    string
	ExpiresAt time.Time
}
