package memory

import (
	"context"
	"time"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

// Seed fills store with a small demo data set: two clients, one supplier,
// products in each stock class, open and settled documents and ledger rows.
// A store that already holds parties is left untouched.
func Seed(ctx context.Context, store repository.EntityStore, now time.Time) error {
	existing, err := store.ListParties(ctx, repository.PartyFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	day := func(offset int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	parties := []domain.Party{
		{ID: "cli-001", Kind: domain.PartyClient, Name: "Mercearia Central", TaxID: "500100200", Email: "compras@central.pt"},
		{ID: "cli-002", Kind: domain.PartyClient, Name: "Atlântico Lda", TaxID: "500300400"},
		{ID: "sup-001", Kind: domain.PartySupplier, Name: "Distribuidora Norte", TaxID: "509800700"},
	}
	for i := range parties {
		if err := store.SaveParty(ctx, &parties[i]); err != nil {
			return err
		}
	}

	products := []domain.Product{
		{ID: "prd-001", SKU: "CAF-250", Name: "Café moído 250g", CurrentStock: 120, MinStock: 20, UnitPriceCents: 349},
		{ID: "prd-002", SKU: "ACU-1KG", Name: "Açúcar 1kg", CurrentStock: 15, MinStock: 15, UnitPriceCents: 119},
		{ID: "prd-003", SKU: "LEI-1L", Name: "Leite meio-gordo 1L", CurrentStock: 0, MinStock: 30, UnitPriceCents: 89},
	}
	for i := range products {
		if err := store.SaveProduct(ctx, &products[i]); err != nil {
			return err
		}
	}

	due := day(30)
	docs := []domain.Document{
		{ID: "doc-001", Kind: domain.KindInvoice, Number: "FT 2024/1", PartyID: "cli-001", Status: domain.StatusPending, IssuedAt: day(-10), DueAt: &due,
			Lines: []domain.DocumentLine{{ProductID: "prd-001", Description: "Café moído 250g", Quantity: 10, UnitPriceCents: 349}}},
		{ID: "doc-002", Kind: domain.KindInvoice, Number: "FT 2024/2", PartyID: "cli-002", Status: domain.StatusPaid, IssuedAt: day(-5),
			Lines: []domain.DocumentLine{{ProductID: "prd-002", Description: "Açúcar 1kg", Quantity: 20, UnitPriceCents: 119}}},
		{ID: "doc-003", Kind: domain.KindQuote, Number: "OR 2024/1", PartyID: "cli-001", Status: domain.StatusSent, IssuedAt: day(-2),
			Lines: []domain.DocumentLine{{ProductID: "prd-003", Description: "Leite meio-gordo 1L", Quantity: 50, UnitPriceCents: 89}}},
		{ID: "doc-004", Kind: domain.KindPurchase, Number: "FC 2024/1", PartyID: "sup-001", Status: domain.StatusPending, IssuedAt: day(-7),
			Lines: []domain.DocumentLine{{ProductID: "prd-003", Description: "Leite meio-gordo 1L", Quantity: 100, UnitPriceCents: 55}}},
	}
	for i := range docs {
		if err := store.SaveDocument(ctx, &docs[i]); err != nil {
			return err
		}
	}

	entries := []domain.LedgerEntry{
		{AccountID: "cli-001", Date: day(-10), DocumentNo: "FT 2024/1", Description: "Fatura", DebitCents: 3490},
		{AccountID: "cli-002", Date: day(-5), DocumentNo: "FT 2024/2", Description: "Fatura", DebitCents: 2380},
		{AccountID: "cli-002", Date: day(-3), DocumentNo: "RE 2024/1", Description: "Recibo", CreditCents: 2380},
	}
	for i := range entries {
		if err := store.AppendEntry(ctx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}
