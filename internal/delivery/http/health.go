package http

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/qrlogin/deps"
	"github.com/medcall/clinic-queue/auth-service/pkg/httputil"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler reports whether the login service can take traffic
type HealthHandler struct {
	sessions    deps.SessionRepository
	mirror      deps.EventMirror
	maxSessions int
	logger      zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(
	sessions deps.SessionRepository,
	mirror deps.EventMirror,
	maxSessions int,
	logger zerolog.Logger,
) *HealthHandler {
	return &HealthHandler{
		sessions:    sessions,
		mirror:      mirror,
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Handle serves GET /health
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	components := h.checkComponents()

	status := HealthStatusHealthy
	healthy := true
	for _, c := range components {
		if !c.Healthy {
			status = HealthStatusDegraded
			healthy = false
		}
	}

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}

	logEvent := h.logger.Debug()
	if !healthy {
		logEvent = h.logger.Warn()
	}
	logEvent.
		Str("status", string(status)).
		Interface("components", components).
		Msg("Health check completed")

	// Degraded still accepts logins; report 200 either way
	httputil.WriteHealthResponse(ctx, response, true)
}

func (h *HealthHandler) checkComponents() []ComponentHealth {
	components := make([]ComponentHealth, 0, 2)

	count := h.sessions.Count()
	storeHealthy := count < h.maxSessions
	storeMsg := ""
	if !storeHealthy {
		storeMsg = "Session store is full, new logins are rejected"
	}
	components = append(components, ComponentHealth{
		Name:    "session_store",
		Healthy: storeHealthy,
		Message: storeMsg,
	})

	mirrorHealthy := h.mirror.Healthy()
	mirrorMsg := ""
	if !mirrorHealthy {
		mirrorMsg = "Event mirror is not healthy"
	}
	components = append(components, ComponentHealth{
		Name:    "event_mirror",
		Healthy: mirrorHealthy,
		Message: mirrorMsg,
	})

	return components
}
