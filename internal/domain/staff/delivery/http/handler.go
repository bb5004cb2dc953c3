package http

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/dto"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/entities"
	stafferrors "github.com/medcall/clinic-queue/auth-service/internal/domain/staff/errors"
	"github.com/medcall/clinic-queue/auth-service/pkg/httputil"
)

// StaffHandler handles staff directory HTTP requests
type StaffHandler struct {
	directory deps.Directory
	logger    zerolog.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(directory deps.Directory, logger zerolog.Logger) *StaffHandler {
	return &StaffHandler{
		directory: directory,
		logger:    logger.With().Str("handler", "staff").Logger(),
	}
}

// Register handles POST /api/v1/staff
func (h *StaffHandler) Register(ctx *fasthttp.RequestCtx) {
	var req dto.RegisterStaffRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		httputil.WriteErrorResponse(ctx, "invalid request body", fasthttp.StatusBadRequest)
		return
	}

	if req.Username == "" {
		httputil.WriteErrorResponse(ctx, "username is required", fasthttp.StatusBadRequest)
		return
	}

	member := &entities.StaffMember{
		ID:        uuid.New().String(),
		Username:  req.Username,
		FullName:  req.FullName,
		Role:      entities.Role(req.Role),
		CreatedAt: time.Now(),
	}

	if err := h.directory.Add(ctx, member); err != nil {
		h.handleError(ctx, err)
		return
	}

	httputil.WriteResponseWithStatus(ctx, toResponse(*member), fasthttp.StatusCreated)
}

// Get handles GET /api/v1/staff/{staff_id}
func (h *StaffHandler) Get(ctx *fasthttp.RequestCtx) {
	staffID, ok := ctx.UserValue("staff_id").(string)
	if !ok || staffID == "" {
		httputil.WriteErrorResponse(ctx, "staff_id is required", fasthttp.StatusBadRequest)
		return
	}

	member, err := h.directory.Get(ctx, staffID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	httputil.WriteResponse(ctx, toResponse(member))
}

// List handles GET /api/v1/staff
func (h *StaffHandler) List(ctx *fasthttp.RequestCtx) {
	members, err := h.directory.List(ctx)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	resp := dto.StaffListResponse{
		Staff: make([]dto.StaffResponse, 0, len(members)),
		Total: len(members),
	}
	for _, m := range members {
		resp.Staff = append(resp.Staff, toResponse(m))
	}

	httputil.WriteResponse(ctx, resp)
}

func (h *StaffHandler) handleError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, stafferrors.ErrStaffNotFound):
		httputil.WriteErrorResponse(ctx, "staff member not found", fasthttp.StatusNotFound)
	case errors.Is(err, stafferrors.ErrStaffExists):
		httputil.WriteErrorResponse(ctx, "staff member already exists", fasthttp.StatusConflict)
	case errors.Is(err, stafferrors.ErrInvalidStaff):
		httputil.WriteErrorResponse(ctx, "invalid staff member", fasthttp.StatusBadRequest)
	default:
		h.logger.Error().Err(err).Msg("unexpected error")
		httputil.WriteErrorResponse(ctx, "internal server error", fasthttp.StatusInternalServerError)
	}
}

func toResponse(m entities.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        m.ID,
		Username:  m.Username,
		FullName:  m.FullName,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}
