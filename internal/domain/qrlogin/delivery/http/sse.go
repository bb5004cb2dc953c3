package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/entities"
	qrerrors "github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/errors"
	"github.com/medcall/clinic-queue/auth-service/internal/utils"
)

// keepaliveInterval spaces out SSE comment lines so idle proxies do not
// drop the connection while the desktop waits for the phone
const keepaliveInterval = 15 * time.Second

// Events handles GET /api/v1/auth/qr/{session_id}/events
//
// Streams session lifecycle events as server-sent events. The stream
// closes after a terminal event (login_complete or expired); desktops
// that lose the stream fall back to status polling.
func (h *QRLoginHandler) Events(ctx *fasthttp.RequestCtx) {
	sessionID, ok := ctx.UserValue("session_id").(string)
	if !ok || sessionID == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "session_id is required")
		return
	}

	events, release, err := h.useCase.Subscribe(ctx, sessionID)
	if err != nil {
		if errors.Is(err, qrerrors.ErrSessionNotFound) {
			h.writeError(ctx, fasthttp.StatusNotFound, "session not found")
			return
		}
		h.handleError(ctx, err)
		return
	}

	ctx.Response.Header.Set("Content-Type", "text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	logger := h.logger.With().Str("session_id", utils.MaskSessionID(sessionID)).Logger()

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer release()

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		logger.Debug().Msg("event stream opened")

		for {
			select {
			case event, open := <-events:
				if !open {
					logger.Debug().Msg("event stream closed by publisher")
					return
				}
				if err := writeSSEEvent(w, event); err != nil {
					logger.Debug().Err(err).Msg("event stream client gone")
					return
				}
				if event.Kind == entities.EventLoginComplete || event.Kind == entities.EventExpired {
					logger.Debug().Str("kind", string(event.Kind)).Msg("event stream finished")
					return
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

// writeSSEEvent writes one event in SSE wire format and flushes it
func writeSSEEvent(w *bufio.Writer, event entities.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := w.WriteString("id: " + event.ID + "\n"); err != nil {
		return err
	}
	if _, err := w.WriteString("event: " + string(event.Kind) + "\n"); err != nil {
		return err
	}
	if _, err := w.WriteString("data: " + string(payload) + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
