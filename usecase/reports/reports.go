// Package reports exposes the derived aggregates as named dispatcher
// queries.
package reports

import (
	"context"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/usecase"
	"github.com/fastygo/erp-audit/usecase/documents"
	"github.com/fastygo/erp-audit/usecase/inventory"
	"github.com/fastygo/erp-audit/usecase/treasury"
)

const (
	QueryStockHealth = "stock-health"
	QueryPending     = "pending-documents"
	QueryStatement   = "statement"
)

// Params are the query-string values of a report request.
type Params map[string]string

// StockHealthReport is the body of the stock-health report.
type StockHealthReport struct {
	Summary  domain.StockSummary    `json:"summary"`
	Products []domain.ProductHealth `json:"products"`
}

// Register binds every report to d.
func Register(d *usecase.Dispatcher, inv *inventory.UseCase, docs *documents.UseCase, ledger *treasury.UseCase) {
	d.RegisterQuery(QueryStockHealth, func(ctx context.Context, _ interface{}) (interface{}, error) {
		summary, rows, err := inv.StockHealth(ctx)
		if err != nil {
			return nil, err
		}
		return StockHealthReport{Summary: summary, Products: rows}, nil
	})

	d.RegisterQuery(QueryPending, func(ctx context.Context, params interface{}) (interface{}, error) {
		if kind := param(params, "kind"); kind != "" {
			return docs.Pending(ctx, domain.DocumentKind(kind))
		}
		return docs.PendingAll(ctx)
	})

	d.RegisterQuery(QueryStatement, func(ctx context.Context, params interface{}) (interface{}, error) {
		return ledger.Statement(ctx, param(params, "account"))
	})
}

func param(params interface{}, key string) string {
	if p, ok := params.(Params); ok {
		return p[key]
	}
	return ""
}
