package reports

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository/memory"
	"github.com/fastygo/erp-audit/usecase"
	"github.com/fastygo/erp-audit/usecase/documents"
	"github.com/fastygo/erp-audit/usecase/inventory"
	"github.com/fastygo/erp-audit/usecase/treasury"
)

func newDispatcher(t *testing.T) *usecase.Dispatcher {
	t.Helper()
	store := memory.NewStore()
	if err := memory.Seed(context.Background(), store, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	d := usecase.NewDispatcher()
	Register(d,
		inventory.New(store, store, nil, nil),
		documents.New(store, store, nil, nil),
		treasury.New(store, nil, nil),
	)
	return d
}

func TestStockHealthReport(t *testing.T) {
	d := newDispatcher(t)
	out, err := d.ExecuteQuery(context.Background(), QueryStockHealth, Params{})
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	report := out.(StockHealthReport)
	if report.Summary.Total != 3 {
		t.Errorf("Total = %d, want 3", report.Summary.Total)
	}
}

func TestPendingReportByKind(t *testing.T) {
	d := newDispatcher(t)
	out, err := d.ExecuteQuery(context.Background(), QueryPending, Params{"kind": "purchase"})
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	summary := out.(domain.PendingSummary)
	if summary.TotalCents != 5500 {
		t.Errorf("TotalCents = %d, want 5500", summary.TotalCents)
	}
}

func TestStatementReport(t *testing.T) {
	d := newDispatcher(t)
	out, err := d.ExecuteQuery(context.Background(), QueryStatement, Params{"account": "cli-001"})
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if closing := out.(*treasury.Statement).ClosingCents; closing != 3490 {
		t.Errorf("ClosingCents = %d, want 3490", closing)
	}
}

func TestUnknownReport(t *testing.T) {
	d := newDispatcher(t)
	if _, err := d.ExecuteQuery(context.Background(), "nope", nil); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}
