package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/api/transport"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	treasuryUC "github.com/fastygo/erp-audit/usecase/treasury"
)

type TreasuryHandler struct {
	baseHandler
	uc *treasuryUC.UseCase
}

func NewTreasuryHandler(uc *treasuryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TreasuryHandler {
	return &TreasuryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Record a ledger entry
// @Tags ledger
// @Router /api/v1/ledger [post]
func (h *TreasuryHandler) RecordEntry(ctx *fasthttp.RequestCtx) {
	var req transport.LedgerEntryRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entry, err := h.uc.RecordEntry(stdCtx, req.ToDomain())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, entry)
}

// @Summary Account statement with running balance
// @Tags ledger
// @Router /api/v1/ledger/{account}/statement [get]
func (h *TreasuryHandler) Statement(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	statement, err := h.uc.Statement(stdCtx, pathParam(ctx, "account"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, statement)
}
