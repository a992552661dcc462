package inventory

import (
	"context"
	"testing"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository/memory"
)

type countingLogger struct{ count int }

func (c *countingLogger) LogAction(context.Context, string, domain.Module, string) { c.count++ }

func TestAdjustStockReclassifies(t *testing.T) {
	store := memory.NewStore()
	rec := &countingLogger{}
	uc := New(store, store, rec, nil)
	ctx := context.Background()

	product, err := uc.CreateProduct(ctx, &domain.Product{SKU: "X-1", Name: "Parafuso", CurrentStock: 5, MinStock: 5})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Health() != domain.StockLow {
		t.Fatalf("health = %q, want low at the minimum", product.Health())
	}

	if product, err = uc.AdjustStock(ctx, product.ID, 1); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if product.Health() != domain.StockHealthy {
		t.Errorf("health = %q, want healthy above the minimum", product.Health())
	}

	if product, err = uc.AdjustStock(ctx, product.ID, -6); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if product.Health() != domain.StockOutOfStock {
		t.Errorf("health = %q, want out_of_stock at zero", product.Health())
	}

	if _, err := uc.AdjustStock(ctx, product.ID, -1); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("negative stock error = %v, want INVALID", err)
	}
	if rec.count != 3 {
		t.Errorf("logged %d actions, want 3", rec.count)
	}
}

func TestStockHealthOfEmptyCatalogue(t *testing.T) {
	store := memory.NewStore()
	uc := New(store, store, nil, nil)
	summary, rows, err := uc.StockHealth(context.Background())
	if err != nil {
		t.Fatalf("StockHealth: %v", err)
	}
	if summary.Total != 0 || len(rows) != 0 {
		t.Errorf("summary = %+v rows = %d, want zero", summary, len(rows))
	}
}

func TestCreatePartyValidates(t *testing.T) {
	store := memory.NewStore()
	rec := &countingLogger{}
	uc := New(store, store, rec, nil)
	if _, err := uc.CreateParty(context.Background(), &domain.Party{Kind: "partner", Name: "X"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("CreateParty error = %v, want INVALID", err)
	}
	if rec.count != 0 {
		t.Errorf("invalid party was logged")
	}
}
