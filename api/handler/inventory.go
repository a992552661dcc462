package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/api/transport"
	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/pkg/httpcontext"
	inventoryUC "github.com/fastygo/erp-audit/usecase/inventory"
)

type InventoryHandler struct {
	baseHandler
	uc *inventoryUC.UseCase
}

func NewInventoryHandler(uc *inventoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List clients and suppliers
// @Tags parties
// @Router /api/v1/parties [get]
func (h *InventoryHandler) ListParties(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	parties, err := h.uc.ListParties(stdCtx, domain.PartyKind(ctx.QueryArgs().Peek("kind")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, parties, len(parties))
}

// @Summary Create a client or supplier
// @Tags parties
// @Router /api/v1/parties [post]
func (h *InventoryHandler) CreateParty(ctx *fasthttp.RequestCtx) {
	var req transport.PartyRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	party, err := h.uc.CreateParty(stdCtx, req.ToDomain())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, party)
}

// @Summary List products
// @Tags products
// @Router /api/v1/products [get]
func (h *InventoryHandler) ListProducts(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.uc.ListProducts(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, products, len(products))
}

// @Summary Create a product
// @Tags products
// @Router /api/v1/products [post]
func (h *InventoryHandler) CreateProduct(ctx *fasthttp.RequestCtx) {
	var req transport.ProductRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	product, err := h.uc.CreateProduct(stdCtx, req.ToDomain())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, product)
}

// @Summary Adjust the stock of a product
// @Tags products
// @Router /api/v1/products/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(ctx *fasthttp.RequestCtx) {
	var req transport.StockAdjustRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	product, err := h.uc.AdjustStock(stdCtx, pathParam(ctx, "id"), req.Delta)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, product)
}

// @Summary Stock health per product
// @Tags products
// @Router /api/v1/products/health [get]
func (h *InventoryHandler) StockHealth(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, rows, err := h.uc.StockHealth(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(rows, summary))
}
