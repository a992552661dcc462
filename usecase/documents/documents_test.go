package documents

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
	"github.com/fastygo/erp-audit/repository/memory"
)

type recordingLogger struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingLogger) LogAction(_ context.Context, action string, _ domain.Module, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func setup(t *testing.T) (*UseCase, *recordingLogger) {
	t.Helper()
	store := memory.NewStore()
	if err := memory.Seed(context.Background(), store, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	rec := &recordingLogger{}
	uc := New(store, store, rec, nil)
	uc.now = func() time.Time { return time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC) }
	return uc, rec
}

func TestCreateNumbersAndLogs(t *testing.T) {
	uc, rec := setup(t)
	doc, err := uc.Create(context.Background(), &domain.Document{
		Kind:    domain.KindDeliveryGuide,
		PartyID: "cli-001",
		Status:  domain.StatusDelivered,
		Lines:   []domain.DocumentLine{{Description: "Café", Quantity: 2, UnitPriceCents: 349}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Status != domain.StatusDraft {
		t.Errorf("Status = %q, want %q", doc.Status, domain.StatusDraft)
	}
	if doc.Number != "GR 2024/1" {
		t.Errorf("Number = %q, want %q", doc.Number, "GR 2024/1")
	}
	if len(rec.actions) != 1 || rec.actions[0] != ActionCreateDocument {
		t.Errorf("actions = %v, want [%s]", rec.actions, ActionCreateDocument)
	}
}

func TestCreateRequiresExistingParty(t *testing.T) {
	uc, rec := setup(t)
	_, err := uc.Create(context.Background(), &domain.Document{Kind: domain.KindInvoice, PartyID: "ghost"})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Create error = %v, want NOT_FOUND", err)
	}
	if len(rec.actions) != 0 {
		t.Errorf("failed create logged %v", rec.actions)
	}
}

func TestChangeStatusFollowsTransitionTable(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	doc, err := uc.ChangeStatus(ctx, "doc-001", domain.StatusPaid)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if doc.Status != domain.StatusPaid {
		t.Errorf("Status = %q, want Paid", doc.Status)
	}
	if _, err := uc.ChangeStatus(ctx, "doc-001", domain.StatusPending); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("Paid -> Pending error = %v, want INVALID", err)
	}
}

func TestConvertQuote(t *testing.T) {
	uc, rec := setup(t)
	ctx := context.Background()

	if _, err := uc.ConvertQuote(ctx, "doc-003"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("converting a sent quote error = %v, want INVALID", err)
	}
	if _, err := uc.ChangeStatus(ctx, "doc-003", domain.StatusAccepted); err != nil {
		t.Fatalf("accept quote: %v", err)
	}

	invoice, err := uc.ConvertQuote(ctx, "doc-003")
	if err != nil {
		t.Fatalf("ConvertQuote: %v", err)
	}
	if invoice.Kind != domain.KindInvoice || invoice.Status != domain.StatusPending || invoice.SourceID != "doc-003" {
		t.Errorf("invoice = %+v", invoice)
	}
	if invoice.Total() != 50*89 {
		t.Errorf("invoice total = %d, want %d", invoice.Total(), 50*89)
	}

	quote, _ := uc.Get(ctx, "doc-003")
	if quote.Status != domain.StatusConverted {
		t.Errorf("quote status = %q, want Converted", quote.Status)
	}
	if last := rec.actions[len(rec.actions)-1]; last != ActionConvertQuote {
		t.Errorf("last action = %q, want %q", last, ActionConvertQuote)
	}

	if _, err := uc.ConvertQuote(ctx, "doc-003"); err == nil {
		t.Errorf("quote converted twice")
	}
}

// lockstepStore holds the first two reads of a document until both callers
// have read it.
type lockstepStore struct {
	*memory.Store
	reads   int32
	arrived sync.WaitGroup
}

func (s *lockstepStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.Store.GetDocument(ctx, id)
	if atomic.AddInt32(&s.reads, 1) <= 2 {
		s.arrived.Done()
		s.arrived.Wait()
	}
	return doc, err
}

func TestConcurrentConvertQuoteInvoicesOnce(t *testing.T) {
	uc, rec := setup(t)
	ctx := context.Background()
	if _, err := uc.ChangeStatus(ctx, "doc-003", domain.StatusAccepted); err != nil {
		t.Fatalf("accept quote: %v", err)
	}

	store := &lockstepStore{Store: uc.docs.(*memory.Store)}
	store.arrived.Add(2)
	uc.docs = store

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.ConvertQuote(ctx, "doc-003")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !domain.IsDomainError(err, domain.ErrCodeConflict):
			t.Errorf("losing convert error = %v, want CONFLICT", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("successful conversions = %d, want 1 (%v)", succeeded, errs)
	}

	invoices, err := uc.List(ctx, repository.DocumentFilter{Kind: domain.KindInvoice})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	fromQuote := 0
	for _, inv := range invoices {
		if inv.SourceID == "doc-003" {
			fromQuote++
		}
	}
	if fromQuote != 1 {
		t.Errorf("invoices from quote = %d, want 1", fromQuote)
	}

	converts := 0
	for _, action := range rec.actions {
		if action == ActionConvertQuote {
			converts++
		}
	}
	if converts != 1 {
		t.Errorf("convert events = %d, want 1", converts)
	}
}

type failingInvoiceStore struct {
	*memory.Store
}

func (s failingInvoiceStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.Kind == domain.KindInvoice {
		return errors.New("disk full")
	}
	return s.Store.SaveDocument(ctx, doc)
}

func TestConvertQuoteRestoresQuoteWhenInvoicingFails(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	if _, err := uc.ChangeStatus(ctx, "doc-003", domain.StatusAccepted); err != nil {
		t.Fatalf("accept quote: %v", err)
	}
	uc.docs = failingInvoiceStore{Store: uc.docs.(*memory.Store)}

	if _, err := uc.ConvertQuote(ctx, "doc-003"); err == nil {
		t.Fatal("expected the invoice write error")
	}
	quote, err := uc.Get(ctx, "doc-003")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if quote.Status != domain.StatusAccepted {
		t.Errorf("quote status = %q, want Accepted", quote.Status)
	}
	invoices, _ := uc.List(ctx, repository.DocumentFilter{Kind: domain.KindInvoice})
	for _, inv := range invoices {
		if inv.SourceID == "doc-003" {
			t.Errorf("orphan invoice %s left behind", inv.Number)
		}
	}
}

func TestPendingTotals(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	summary, err := uc.Pending(ctx, domain.KindInvoice)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if summary.Count != 1 || summary.TotalCents != 3490 {
		t.Errorf("summary = %+v, want 1 invoice totalling 3490", summary)
	}

	all, err := uc.PendingAll(ctx)
	if err != nil {
		t.Fatalf("PendingAll: %v", err)
	}
	if len(all) != len(domain.DocumentKinds()) {
		t.Errorf("len(all) = %d, want one per kind", len(all))
	}

	docs, _ := uc.List(ctx, repository.DocumentFilter{Kind: domain.KindCreditNote})
	if got := domain.PendingTotal(docs, domain.OpenStatuses(domain.KindCreditNote)); got != 0 {
		t.Errorf("empty credit notes pending = %d, want 0", got)
	}
}
