package http

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/dto"
	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
)

// QRLoginHandler handles QR login HTTP requests
type QRLoginHandler struct {
	useCase deps.QRLoginService
	logger  zerolog.Logger
}

// NewQRLoginHandler creates a new QR login handler
func NewQRLoginHandler(useCase deps.QRLoginService, logger zerolog.Logger) *QRLoginHandler {
	return &QRLoginHandler{
		useCase: useCase,
		logger:  logger.With().Str("handler", "qr_login").Logger(),
	}
}

// Init handles POST /api/v1/auth/qr/init
func (h *QRLoginHandler) Init(ctx *fasthttp.RequestCtx) {
	handle, err := h.useCase.Init(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to init QR login session")
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusCreated, dto.InitSessionResponse{
		SessionID:    handle.SessionID,
		QRURL:        handle.QRURL,
		QRCodeBase64: handle.QRCodeBase64,
		ExpiresAt:    handle.ExpiresAt,
	})
}

// Authorize handles POST /api/v1/auth/qr/{session_id}/authorize
func (h *QRLoginHandler) Authorize(ctx *fasthttp.RequestCtx) {
	sessionID, ok := ctx.UserValue("session_id").(string)
	if !ok || sessionID == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "session_id is required")
		return
	}

	var req dto.AuthorizeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.useCase.Authorize(ctx, sessionID, req.UserID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.AuthorizeResponse{
		SessionID:    result.SessionID,
		Status:       string(result.State),
		VerifierCode: result.VerifierCode,
	})
}

// Finalize handles POST /api/v1/auth/qr/{session_id}/finalize
func (h *QRLoginHandler) Finalize(ctx *fasthttp.RequestCtx) {
	sessionID, ok := ctx.UserValue("session_id").(string)
	if !ok || sessionID == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "session_id is required")
		return
	}

	var req dto.FinalizeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return
	}

	if req.VerifierCode == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "verifier_code is required")
		return
	}

	result, err := h.useCase.Finalize(ctx, sessionID, req.VerifierCode)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FinalizeResponse{
		SessionID:   result.SessionID,
		UserID:      result.UserID,
		LoginTicket: result.Ticket,
	})
}

// Status handles GET /api/v1/auth/qr/{session_id}/status
func (h *QRLoginHandler) Status(ctx *fasthttp.RequestCtx) {
	sessionID, ok := ctx.UserValue("session_id").(string)
	if !ok || sessionID == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "session_id is required")
		return
	}

	info, err := h.useCase.Status(ctx, sessionID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	resp := dto.StatusResponse{
		SessionID: info.SessionID,
		Status:    string(info.State),
		ExpiresAt: info.ExpiresAt,
	}
	if info.UserID != "" {
		resp.UserID = &info.UserID
	}

	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

// Cancel handles POST /api/v1/auth/qr/{session_id}/cancel
func (h *QRLoginHandler) Cancel(ctx *fasthttp.RequestCtx) {
	sessionID, ok := ctx.UserValue("session_id").(string)
	if !ok || sessionID == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "session_id is required")
		return
	}

	if err := h.useCase.Cancel(ctx, sessionID); err != nil {
		h.handleError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// handleError maps domain errors to HTTP status codes. The verifier
// mismatch message is fixed text so responses never leak how close the
// input was.
func (h *QRLoginHandler) handleError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, qrerrors.ErrSessionNotFound):
		h.writeError(ctx, fasthttp.StatusNotFound, "session not found")
	case errors.Is(err, qrerrors.ErrSessionExpired):
		h.writeError(ctx, fasthttp.StatusGone, "session expired")
	case errors.Is(err, qrerrors.ErrNotAuthorizedYet):
		h.writeError(ctx, fasthttp.StatusConflict, "session not authorized yet")
	case errors.Is(err, qrerrors.ErrAlreadyCompleted):
		h.writeError(ctx, fasthttp.StatusConflict, "session already completed")
	case errors.Is(err, qrerrors.ErrUserConflict):
		h.writeError(ctx, fasthttp.StatusConflict, "session authorized by another user")
	case errors.Is(err, qrerrors.ErrVerifierMismatch):
		h.writeError(ctx, fasthttp.StatusForbidden, "verifier code mismatch")
	case errors.Is(err, qrerrors.ErrRateLimited):
		h.writeError(ctx, fasthttp.StatusTooManyRequests, "too many verifier attempts")
	case errors.Is(err, qrerrors.ErrUserNotFound):
		h.writeError(ctx, fasthttp.StatusNotFound, "user not found")
	case errors.Is(err, qrerrors.ErrMaxSessionsReached):
		h.writeError(ctx, fasthttp.StatusTooManyRequests, "too many active sessions")
	case errors.Is(err, qrerrors.ErrStoreUnavailable):
		h.writeError(ctx, fasthttp.StatusServiceUnavailable, "session store unavailable")
	default:
		h.logger.Error().Err(err).Msg("unexpected error")
		h.writeError(ctx, fasthttp.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes JSON response
func (h *QRLoginHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes error response
func (h *QRLoginHandler) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	json.NewEncoder(ctx).Encode(dto.ErrorResponse{Error: message})
}
