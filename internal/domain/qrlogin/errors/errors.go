package errors

import "errors"

var (
	ErrSessionNotFound    = errors.New("qr login session not found")
	ErrSessionExpired     = errors.New("qr login session expired")
	ErrNotAuthorizedYet   = errors.New("qr login session not authorized yet")
	ErrVerifierMismatch   = errors.New("verifier code does not match")
	ErrAlreadyCompleted   = errors.New("qr login session already completed")
	ErrUserConflict       = errors.New("session already authorized by a different user")
	ErrRateLimited        = errors.New("too many wrong verifier attempts")
	ErrUserNotFound       = errors.New("staff user not found")
	ErrMaxSessionsReached = errors.New("maximum concurrent login sessions reached")
	ErrSessionExists      = errors.New("qr login session id already exists")
	ErrStoreUnavailable   = errors.New("session store unavailable")
)
