package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/api/transport"
	"github.com/fastygo/erp-audit/internal/infrastructure/monitor"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	auditUC "github.com/fastygo/erp-audit/usecase/audit"
)

// FeedStatus reports the state of the live activity feed.
type FeedStatus interface {
	Status() auditUC.Status
}

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
	feed    FeedStatus
}

func NewHealthHandler(mon *monitor.Monitor, feed FeedStatus, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		feed:        feed,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services":   status.Components,
	}
	if h.feed != nil {
		payload["feed"] = h.feed.Status()
	}

	if h.monitor.IsOnline() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
