package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/api/transport"
	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	auditUC "github.com/fastygo/erp-audit/usecase/audit"
)

type AuditHandler struct {
	baseHandler
	logger *auditUC.Logger
	hub    *auditUC.Hub
}

func NewAuditHandler(logger *auditUC.Logger, hub *auditUC.Hub, adapter *httpcontext.Adapter, zl *zap.Logger) *AuditHandler {
	return &AuditHandler{
		baseHandler: newBaseHandler(adapter, zl),
		logger:      logger,
		hub:         hub,
	}
}

// @Summary Most recent activity, newest first
// @Tags audit
// @Router /api/v1/audit [get]
func (h *AuditHandler) Recent(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.hub.Recent(stdCtx, queryInt(ctx, "limit", auditUC.DefaultFeedLimit))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, events, len(events))
}

// @Summary Record a user action
// @Description Accepted even when the store write fails; the log is best effort.
// @Tags audit
// @Router /api/v1/audit [post]
func (h *AuditHandler) Log(ctx *fasthttp.RequestCtx) {
	var req transport.LogActionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.logger.LogActionAsync(stdCtx, req.Action, domain.Module(req.Module), req.Details)
	h.respondSuccess(ctx, http.StatusAccepted, nil)
}
