package entities

import (
	"testing"
	"time"

	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
)

func newTestSession(now time.Time) *QRSession {
	return &QRSession{
		ID:           "test-session-id-0123456789abcdef",
		VerifierCode: "123456",
		State:        StatePending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(3 * time.Minute),
		UpdatedAt:    now,
	}
}

func TestAuthorizeTransition(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	changed, err := s.Authorize("user-1", now)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if !changed {
		t.Error("Expected changed=true on first authorize")
	}
	if s.State != StateAuthorized {
		t.Errorf("Expected state authorized, got %s", s.State)
	}
	if s.AuthorizedUserID != "user-1" {
		t.Errorf("Expected user-1, got %s", s.AuthorizedUserID)
	}
	if s.AuthorizedAt == nil {
		t.Error("Expected AuthorizedAt to be set")
	}
}

func TestAuthorizeIdempotentSameUser(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	if _, err := s.Authorize("user-1", now); err != nil {
		t.Fatalf("First authorize failed: %v", err)
	}
	firstAt := *s.AuthorizedAt

	changed, err := s.Authorize("user-1", now.Add(time.Second))
	if err != nil {
		t.Fatalf("Duplicate authorize failed: %v", err)
	}
	if changed {
		t.Error("Expected changed=false on duplicate authorize")
	}
	if !s.AuthorizedAt.Equal(firstAt) {
		t.Error("AuthorizedAt must not move on a duplicate authorize")
	}
}

func TestAuthorizeConflictDifferentUser(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	if _, err := s.Authorize("user-1", now); err != nil {
		t.Fatalf("First authorize failed: %v", err)
	}

	_, err := s.Authorize("user-2", now)
	if err != qrerrors.ErrUserConflict {
		t.Errorf("Expected ErrUserConflict, got %v", err)
	}
	if s.AuthorizedUserID != "user-1" {
		t.Errorf("Conflicting authorize must not replace the user, got %s", s.AuthorizedUserID)
	}
}

func TestAuthorizeAfterDeadline(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	_, err := s.Authorize("user-1", now.Add(4*time.Minute))
	if err != qrerrors.ErrSessionExpired {
		t.Errorf("Expected ErrSessionExpired past the deadline, got %v", err)
	}
	if s.State != StatePending {
		t.Errorf("Rejected authorize must not change state, got %s", s.State)
	}
}

func TestCheckFinalizable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		prepare func(*QRSession)
		at      time.Time
		wantErr error
	}{
		{
			name:    "pending session",
			prepare: func(s *QRSession) {},
			at:      now,
			wantErr: qrerrors.ErrNotAuthorizedYet,
		},
		{
			name: "authorized session",
			prepare: func(s *QRSession) {
				s.Authorize("user-1", now)
			},
			at:      now,
			wantErr: nil,
		},
		{
			name: "completed session",
			prepare: func(s *QRSession) {
				s.Authorize("user-1", now)
				s.Complete(now)
			},
			at:      now,
			wantErr: qrerrors.ErrAlreadyCompleted,
		},
		{
			name: "expired session",
			prepare: func(s *QRSession) {
				s.Expire(now)
			},
			at:      now,
			wantErr: qrerrors.ErrSessionExpired,
		},
		{
			name: "authorized but past deadline",
			prepare: func(s *QRSession) {
				s.Authorize("user-1", now)
			},
			at:      now.Add(4 * time.Minute),
			wantErr: qrerrors.ErrSessionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(now)
			tt.prepare(s)

			if err := s.CheckFinalizable(tt.at); err != tt.wantErr {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthorizedStateDoesNotExtendDeadline(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	// Authorize one second before the deadline
	almostDeadline := s.ExpiresAt.Add(-time.Second)
	if _, err := s.Authorize("user-1", almostDeadline); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	// The validity window is absolute; authorization buys no extra time
	if err := s.CheckFinalizable(s.ExpiresAt.Add(time.Second)); err != qrerrors.ErrSessionExpired {
		t.Errorf("Expected ErrSessionExpired after the absolute deadline, got %v", err)
	}
}

func TestExpireNeverOverridesCompleted(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	s.Authorize("user-1", now)
	if err := s.Complete(now); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if changed := s.Expire(now); changed {
		t.Error("Expire must not touch a completed session")
	}
	if s.State != StateCompleted {
		t.Errorf("Expected state completed, got %s", s.State)
	}
}

func TestExpireIsIdempotent(t *testing.T) {
	now := time.Now()
	s := newTestSession(now)

	if changed := s.Expire(now); !changed {
		t.Error("Expected first expire to report changed")
	}
	if changed := s.Expire(now); changed {
		t.Error("Expected second expire to be a no-op")
	}
}

// checkUserIDBoundToState asserts that AuthorizedUserID is set exactly
// when the session is authorized or completed, and empty otherwise.
func checkUserIDBoundToState(t *testing.T, s *QRSession, step string) {
	t.Helper()

	bound := s.State == StateAuthorized || s.State == StateCompleted
	if bound && s.AuthorizedUserID == "" {
		t.Errorf("%s: state %s must carry an authorized user", step, s.State)
	}
	if !bound && s.AuthorizedUserID != "" {
		t.Errorf("%s: state %s must not carry an authorized user, got %q", step, s.State, s.AuthorizedUserID)
	}
}

func TestAuthorizedUserBoundToState(t *testing.T) {
	now := time.Now()

	t.Run("authorize then expire", func(t *testing.T) {
		s := newTestSession(now)
		checkUserIDBoundToState(t, s, "after create")

		if _, err := s.Authorize("user-1", now); err != nil {
			t.Fatalf("Authorize failed: %v", err)
		}
		checkUserIDBoundToState(t, s, "after authorize")

		if changed := s.Expire(now.Add(4 * time.Minute)); !changed {
			t.Fatal("Expected expire to report changed")
		}
		checkUserIDBoundToState(t, s, "after expire")
		if s.AuthorizedAt == nil {
			t.Error("AuthorizedAt must survive expiry for the audit trail")
		}
	})

	t.Run("authorize then complete", func(t *testing.T) {
		s := newTestSession(now)

		if _, err := s.Authorize("user-1", now); err != nil {
			t.Fatalf("Authorize failed: %v", err)
		}
		if err := s.Complete(now); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		checkUserIDBoundToState(t, s, "after complete")

		// Expire must not strip the user from a completed session
		s.Expire(now.Add(4 * time.Minute))
		checkUserIDBoundToState(t, s, "after expire on completed")
	})

	t.Run("expire without authorize", func(t *testing.T) {
		s := newTestSession(now)
		s.Expire(now)
		checkUserIDBoundToState(t, s, "after expire from pending")
	})
}

func TestTerminal(t *testing.T) {
	now := time.Now()

	s := newTestSession(now)
	if s.Terminal() {
		t.Error("Pending session must not be terminal")
	}

	s.Authorize("user-1", now)
	if s.Terminal() {
		t.Error("Authorized session must not be terminal")
	}

	s.Complete(now)
	if !s.Terminal() {
		t.Error("Completed session must be terminal")
	}

	e := newTestSession(now)
	e.Expire(now)
	if !e.Terminal() {
		t.Error("Expired session must be terminal")
	}
}
