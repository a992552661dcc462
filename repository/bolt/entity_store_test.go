package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/erp-audit/domain"
	boltstore "github.com/fastygo/erp-audit/internal/infrastructure/bolt"
	"github.com/fastygo/erp-audit/repository"
	"github.com/fastygo/erp-audit/repository/memory"
)

func setupStore(t *testing.T) repository.EntityStore {
	t.Helper()
	db, err := boltstore.Open(filepath.Join(t.TempDir(), "entities.db"), Buckets...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEntityStore(db)
}

func TestSeededStorePersistsCollections(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := memory.Seed(ctx, store, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	docs, err := store.ListDocuments(ctx, repository.DocumentFilter{Kind: domain.KindInvoice})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if got := domain.PendingTotal(docs, domain.OpenStatuses(domain.KindInvoice)); got != 3490 {
		t.Errorf("PendingTotal = %d, want 3490", got)
	}

	entries, err := store.ListEntries(ctx, "cli-002")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestGetMissingDocument(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetDocument(context.Background(), "missing"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("GetDocument error = %v, want NOT_FOUND", err)
	}
}

func TestDuplicateSKURejected(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	first := domain.Product{SKU: "A-1", Name: "A"}
	if err := store.SaveProduct(ctx, &first); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	second := domain.Product{SKU: "A-1", Name: "B"}
	if err := store.SaveProduct(ctx, &second); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("SaveProduct error = %v, want CONFLICT", err)
	}
}

func TestUpdateDocumentStatusInsideTransaction(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := memory.Seed(ctx, store, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if _, err := store.UpdateDocumentStatus(ctx, "doc-003", domain.StatusSent, domain.StatusAccepted); err != nil {
		t.Fatalf("UpdateDocumentStatus: %v", err)
	}
	if _, err := store.UpdateDocumentStatus(ctx, "doc-003", domain.StatusSent, domain.StatusRejected); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("stale update error = %v, want CONFLICT", err)
	}
	doc, err := store.GetDocument(ctx, "doc-003")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Status != domain.StatusAccepted {
		t.Errorf("persisted status = %q, want Accepted", doc.Status)
	}
	if _, err := store.UpdateDocumentStatus(ctx, "doc-404", domain.StatusSent, domain.StatusAccepted); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("missing document error = %v, want NOT_FOUND", err)
	}
}
