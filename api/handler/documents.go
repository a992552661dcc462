package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/api/transport"
	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	"github.com/fastygo/erp-audit/repository"
	documentsUC "github.com/fastygo/erp-audit/usecase/documents"
)

type DocumentHandler struct {
	baseHandler
	uc *documentsUC.UseCase
}

func NewDocumentHandler(uc *documentsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List documents
// @Tags documents
// @Router /api/v1/documents [get]
func (h *DocumentHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.DocumentFilter{
		Kind:    domain.DocumentKind(args.Peek("kind")),
		PartyID: string(args.Peek("party_id")),
		Status:  domain.DocumentStatus(args.Peek("status")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	docs, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, docs, len(docs))
}

// @Summary Get a document
// @Tags documents
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	doc, err := h.uc.Get(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, doc)
}

// @Summary Create a document
// @Tags documents
// @Router /api/v1/documents [post]
func (h *DocumentHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.DocumentRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	doc, err := h.uc.Create(stdCtx, req.ToDomain())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, doc)
}

// @Summary Change the status of a document
// @Tags documents
// @Router /api/v1/documents/{id}/status [post]
func (h *DocumentHandler) ChangeStatus(ctx *fasthttp.RequestCtx) {
	var req transport.StatusRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	doc, err := h.uc.ChangeStatus(stdCtx, pathParam(ctx, "id"), domain.DocumentStatus(req.Status))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, doc)
}

// @Summary Convert an accepted quote into an invoice
// @Tags documents
// @Router /api/v1/documents/{id}/convert [post]
func (h *DocumentHandler) Convert(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invoice, err := h.uc.ConvertQuote(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, invoice)
}

// @Summary Pending totals per document kind
// @Tags documents
// @Router /api/v1/documents/pending [get]
func (h *DocumentHandler) Pending(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if kind := string(ctx.QueryArgs().Peek("kind")); kind != "" {
		summary, err := h.uc.Pending(stdCtx, domain.DocumentKind(kind))
		if err != nil {
			h.respondError(ctx, stdCtx, err)
			return
		}
		h.respondSuccess(ctx, http.StatusOK, summary)
		return
	}

	summaries, err := h.uc.PendingAll(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, summaries, len(summaries))
}
