package deps

import (
	"context"
	"time"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
)

// QRLoginService defines the cross-device login handshake operations
type QRLoginService interface {
	// Init creates a pending session and returns the QR payload for
	// the desktop login page.
	Init(ctx context.Context) (*entities.SessionHandle, error)

	// Authorize attaches an authenticated staff user to a pending
	// session. Called by the phone-side flow after its own credential
	// check. The returned payload carries the verifier code the phone
	// must display.
	Authorize(ctx context.Context, sessionID, userID string) (*entities.AuthorizeResult, error)

	// Finalize completes the login once the desktop operator has typed
	// the verifier code read off the phone screen.
	Finalize(ctx context.Context, sessionID, verifierInput string) (*entities.LoginResult, error)

	// Status is the polling fallback for desktops whose event stream
	// disconnected.
	Status(ctx context.Context, sessionID string) (*entities.StatusInfo, error)

	// Cancel expires a session early when the desktop dialog is closed.
	Cancel(ctx context.Context, sessionID string) error

	// Subscribe returns the session's lifecycle event stream and a
	// release func. Events arrive in transition order; no replay of
	// events published before the subscription.
	Subscribe(ctx context.Context, sessionID string) (<-chan entities.Event, func(), error)

	// ExpireDue transitions sessions past their deadline and frees
	// terminal sessions past the grace period. Driven by the sweeper;
	// returns how many sessions were expired.
	ExpireDue(ctx context.Context, now time.Time) int
}

// SessionRepository is the shared mutable store of login sessions.
// Update is the single mutation path: mutate runs under the record
// lock against a working copy and the copy is committed only when
// mutate returns nil, so a rejected transition never changes stored
// state and two racing callers cannot both observe the same
// pre-transition state.
type SessionRepository interface {
	Create(ctx context.Context, session *entities.QRSession) error
	Get(ctx context.Context, sessionID string) (entities.QRSession, error)
	Update(ctx context.Context, sessionID string, mutate func(*entities.QRSession) error) (entities.QRSession, error)
	Delete(ctx context.Context, sessionID string) error

	// ExpiredIDs lists sessions whose deadline has passed, for the
	// sweeper. Lazy per-access checks do not depend on it.
	ExpiredIDs(now time.Time) []string

	Count() int
}

// EventBus fans session lifecycle events out to connected desktops.
// Purely a push optimization: if it is unavailable the status query
// remains the source of truth.
type EventBus interface {
	Publish(ctx context.Context, sessionID string, event entities.Event)
	Subscribe(ctx context.Context, sessionID string) (<-chan entities.Event, func())
}

// EventMirror forwards lifecycle events to the rest of the clinic
// system (Kafka when configured, no-op otherwise). Failures are logged,
// never surfaced to the login flow.
type EventMirror interface {
	SessionEvent(ctx context.Context, event entities.Event) error
	Healthy() bool
	Close() error
}

// TicketIssuer signs the short-lived login ticket the surrounding app
// exchanges for a browser session cookie.
type TicketIssuer interface {
	Issue(userID string, now time.Time) (string, error)
}

// QREncoder renders the session URL as a QR code image
type QREncoder interface {
	EncodePNGBase64(payload string) (string, error)
}

// StaffDirectory is the boundary to the out-of-scope user management:
// authorize only needs to know the user id is real.
type StaffDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}
