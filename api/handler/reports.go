package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/pkg/httpcontext"
	"github.com/fastygo/erp-audit/usecase"
	"github.com/fastygo/erp-audit/usecase/reports"
)

type ReportHandler struct {
	baseHandler
	dispatcher *usecase.Dispatcher
}

func NewReportHandler(dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
	}
}

// @Summary List report names
// @Tags reports
// @Router /api/v1/reports [get]
func (h *ReportHandler) List(ctx *fasthttp.RequestCtx) {
	names := h.dispatcher.Queries()
	h.respondList(ctx, names, len(names))
}

// @Summary Run a named report
// @Tags reports
// @Router /api/v1/reports/{name} [get]
func (h *ReportHandler) Run(ctx *fasthttp.RequestCtx) {
	params := reports.Params{}
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.dispatcher.ExecuteQuery(stdCtx, pathParam(ctx, "name"), params)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}
