package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/internal/infrastructure/monitor"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
)

// StatusReporter is satisfied by *monitor.Monitor.
type StatusReporter interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusReporter
}

func NewHealthHandler(mon StatusReporter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /api/health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"message":    "server is running",
		"timestamp":  time.Now().UTC(),
		"services":   status.Services,
		"last_check": status.LastCheck,
	}

	if status.Healthy {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	env := transport.NewError("DEGRADED", "dependencies unhealthy", nil)
	env.Data = payload
	h.respondJSON(ctx, http.StatusServiceUnavailable, env)
}
