package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/dto"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
)

// serviceMock returns canned results per operation
type serviceMock struct {
	initHandle  *entities.SessionHandle
	initErr     error
	authResult  *entities.AuthorizeResult
	authErr     error
	loginResult *entities.LoginResult
	loginErr    error
	statusInfo  *entities.StatusInfo
	statusErr   error
	cancelErr   error
}

func (m *serviceMock) Init(context.Context) (*entities.SessionHandle, error) {
	return m.initHandle, m.initErr
}

func (m *serviceMock) Authorize(context.Context, string, string) (*entities.AuthorizeResult, error) {
	return m.authResult, m.authErr
}

func (m *serviceMock) Finalize(context.Context, string, string) (*entities.LoginResult, error) {
	return m.loginResult, m.loginErr
}

func (m *serviceMock) Status(context.Context, string) (*entities.StatusInfo, error) {
	return m.statusInfo, m.statusErr
}

func (m *serviceMock) Cancel(context.Context, string) error { return m.cancelErr }

func (m *serviceMock) Subscribe(context.Context, string) (<-chan entities.Event, func(), error) {
	return nil, nil, qrerrors.ErrSessionNotFound
}

func (m *serviceMock) ExpireDue(context.Context, time.Time) int { return 0 }

func newRequestCtx(method, body string, sessionID string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	if sessionID != "" {
		ctx.SetUserValue("session_id", sessionID)
	}
	return ctx
}

func TestInitHandler(t *testing.T) {
	expires := time.Now().Add(3 * time.Minute).UTC()
	h := NewQRLoginHandler(&serviceMock{
		initHandle: &entities.SessionHandle{
			SessionID:    "sess-1",
			QRURL:        "http://clinic.local/login/qr?sid=sess-1",
			QRCodeBase64: "aVBORw0KGgo=",
			ExpiresAt:    expires,
		},
	}, zerolog.Nop())

	ctx := newRequestCtx("POST", "", "")
	h.Init(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("Expected 201, got %d", ctx.Response.StatusCode())
	}

	var resp dto.InitSessionResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.SessionID != "sess-1" || resp.QRCodeBase64 == "" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestAuthorizeHandlerValidation(t *testing.T) {
	h := NewQRLoginHandler(&serviceMock{}, zerolog.Nop())

	// Missing session id
	ctx := newRequestCtx("POST", `{"user_id":"user-1"}`, "")
	h.Authorize(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("Expected 400 for missing session_id, got %d", ctx.Response.StatusCode())
	}

	// Malformed body
	ctx = newRequestCtx("POST", `{broken`, "sess-1")
	h.Authorize(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("Expected 400 for bad body, got %d", ctx.Response.StatusCode())
	}

	// Missing user id
	ctx = newRequestCtx("POST", `{}`, "sess-1")
	h.Authorize(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("Expected 400 for missing user_id, got %d", ctx.Response.StatusCode())
	}
}

func TestFinalizeHandlerHappyPath(t *testing.T) {
	h := NewQRLoginHandler(&serviceMock{
		loginResult: &entities.LoginResult{
			SessionID: "sess-1",
			UserID:    "user-1",
			Ticket:    "ticket-abc",
		},
	}, zerolog.Nop())

	ctx := newRequestCtx("POST", `{"verifier_code":"123456"}`, "sess-1")
	h.Finalize(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("Expected 200, got %d", ctx.Response.StatusCode())
	}

	var resp dto.FinalizeResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.LoginTicket != "ticket-abc" || resp.UserID != "user-1" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{qrerrors.ErrSessionNotFound, fasthttp.StatusNotFound},
		{qrerrors.ErrSessionExpired, fasthttp.StatusGone},
		{qrerrors.ErrNotAuthorizedYet, fasthttp.StatusConflict},
		{qrerrors.ErrAlreadyCompleted, fasthttp.StatusConflict},
		{qrerrors.ErrUserConflict, fasthttp.StatusConflict},
		{qrerrors.ErrVerifierMismatch, fasthttp.StatusForbidden},
		{qrerrors.ErrRateLimited, fasthttp.StatusTooManyRequests},
		{qrerrors.ErrMaxSessionsReached, fasthttp.StatusTooManyRequests},
		{qrerrors.ErrStoreUnavailable, fasthttp.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		h := NewQRLoginHandler(&serviceMock{loginErr: tt.err}, zerolog.Nop())

		ctx := newRequestCtx("POST", `{"verifier_code":"123456"}`, "sess-1")
		h.Finalize(ctx)

		if ctx.Response.StatusCode() != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, ctx.Response.StatusCode())
		}
	}
}

func TestVerifierMismatchResponseCarriesNoHints(t *testing.T) {
	h := NewQRLoginHandler(&serviceMock{loginErr: qrerrors.ErrVerifierMismatch}, zerolog.Nop())

	ctx := newRequestCtx("POST", `{"verifier_code":"123450"}`, "sess-1")
	h.Finalize(ctx)

	var resp dto.ErrorResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.Error != "verifier code mismatch" {
		t.Errorf("Mismatch response must be fixed text, got %q", resp.Error)
	}
}

func TestStatusHandlerOmitsUserWhilePending(t *testing.T) {
	h := NewQRLoginHandler(&serviceMock{
		statusInfo: &entities.StatusInfo{
			SessionID: "sess-1",
			State:     entities.StatePending,
			ExpiresAt: time.Now().Add(time.Minute),
		},
	}, zerolog.Nop())

	ctx := newRequestCtx("GET", "", "sess-1")
	h.Status(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("Expected 200, got %d", ctx.Response.StatusCode())
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(ctx.Response.Body(), &raw); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if _, present := raw["user_id"]; present {
		t.Error("user_id must be omitted before completion")
	}
}

func TestCancelHandler(t *testing.T) {
	h := NewQRLoginHandler(&serviceMock{}, zerolog.Nop())

	ctx := newRequestCtx("POST", "", "sess-1")
	h.Cancel(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Errorf("Expected 204, got %d", ctx.Response.StatusCode())
	}
}
