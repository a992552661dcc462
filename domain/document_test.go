package domain

import "testing"

func doc(kind DocumentKind, status DocumentStatus, qty, price int64) Document {
	return Document{
		Kind:    kind,
		Status:  status,
		PartyID: "p",
		Lines:   []DocumentLine{{Description: "x", Quantity: qty, UnitPriceCents: price}},
	}
}

func TestPendingTotal(t *testing.T) {
	open := NewStatusSet(StatusPending, StatusOverdue)

	if got := PendingTotal(nil, open); got != 0 {
		t.Fatalf("empty input: got %d, want 0", got)
	}

	docs := []Document{
		doc(KindInvoice, StatusPending, 10, 349),
		doc(KindInvoice, StatusOverdue, 1, 1000),
		doc(KindInvoice, StatusPaid, 20, 119),
		doc(KindInvoice, DocumentStatus("Pendente"), 5, 100),
		{Kind: KindInvoice, Status: StatusPending},
	}
	if got := PendingTotal(docs, open); got != 4490 {
		t.Fatalf("got %d, want 4490", got)
	}
	if got := PendingTotal(docs, NewStatusSet()); got != 0 {
		t.Fatalf("empty open set: got %d, want 0", got)
	}
}

func TestSummarizePendingFiltersKind(t *testing.T) {
	docs := []Document{
		doc(KindInvoice, StatusPending, 1, 100),
		doc(KindPurchase, StatusPending, 1, 5500),
		doc(KindQuote, StatusSent, 2, 50),
		doc(KindQuote, StatusAccepted, 2, 50),
	}
	if got := SummarizePending(docs, KindInvoice); got.Count != 1 || got.TotalCents != 100 {
		t.Fatalf("invoice summary %+v", got)
	}
	if got := SummarizePending(docs, KindQuote); got.Count != 1 || got.TotalCents != 100 {
		t.Fatalf("quote summary %+v", got)
	}
	if got := SummarizePending(docs, KindCreditNote); got.Count != 0 || got.TotalCents != 0 {
		t.Fatalf("credit note summary %+v", got)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		kind     DocumentKind
		from, to DocumentStatus
		ok       bool
	}{
		{KindInvoice, StatusPending, StatusPaid, true},
		{KindInvoice, StatusPaid, StatusPending, false},
		{KindInvoice, StatusOverdue, StatusPaid, true},
		{KindQuote, StatusDraft, StatusSent, true},
		{KindQuote, StatusSent, StatusConverted, false},
		{KindQuote, StatusAccepted, StatusConverted, true},
		{KindDeliveryGuide, StatusIssued, StatusDelivered, true},
		{KindCreditNote, StatusPending, StatusApplied, true},
		{DocumentKind("receipt"), StatusPending, StatusPaid, false},
	}
	for _, tt := range tests {
		d := Document{Kind: tt.kind, Status: tt.from}
		err := d.Transition(tt.to)
		if tt.ok && err != nil {
			t.Errorf("%s %s->%s: unexpected error %v", tt.kind, tt.from, tt.to, err)
		}
		if !tt.ok {
			if !IsDomainError(err, ErrCodeInvalid) {
				t.Errorf("%s %s->%s: expected INVALID, got %v", tt.kind, tt.from, tt.to, err)
			}
			if d.Status != tt.from {
				t.Errorf("%s: status changed on rejected transition", tt.kind)
			}
		}
	}
}

func TestDocumentTotal(t *testing.T) {
	d := Document{Lines: []DocumentLine{
		{Quantity: 10, UnitPriceCents: 349},
		{Quantity: 2, UnitPriceCents: 5},
	}}
	if d.Total() != 3500 {
		t.Fatalf("total = %d, want 3500", d.Total())
	}
	var nilDoc *Document
	if nilDoc.Total() != 0 {
		t.Fatal("nil document total must be 0")
	}
}
