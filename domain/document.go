package domain

import "time"

// DocumentKind discriminates the financial document variants.
type DocumentKind string

const (
	KindInvoice        DocumentKind = "invoice"
	KindPurchase       DocumentKind = "purchase"
	KindQuote          DocumentKind = "quote"
	KindDeliveryGuide  DocumentKind = "delivery_guide"
	KindTransportGuide DocumentKind = "transport_guide"
	KindDebitNote      DocumentKind = "debit_note"
	KindCreditNote     DocumentKind = "credit_note"
)

// DocumentStatus is shared by all kinds; each kind only uses its own subset.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "Draft"
	StatusSent      DocumentStatus = "Sent"
	StatusAccepted  DocumentStatus = "Accepted"
	StatusRejected  DocumentStatus = "Rejected"
	StatusConverted DocumentStatus = "Converted"
	StatusPending   DocumentStatus = "Pending"
	StatusOverdue   DocumentStatus = "Overdue"
	StatusPaid      DocumentStatus = "Paid"
	StatusCancelled DocumentStatus = "Cancelled"
	StatusIssued    DocumentStatus = "Issued"
	StatusDelivered DocumentStatus = "Delivered"
	StatusApplied   DocumentStatus = "Applied"
)

type transitions map[DocumentStatus][]DocumentStatus

type kindRules struct {
	initial     DocumentStatus
	open        []DocumentStatus
	transitions transitions
	module      Module
}

var (
	billingTransitions = transitions{
		StatusPending: {StatusPaid, StatusOverdue, StatusCancelled},
		StatusOverdue: {StatusPaid, StatusCancelled},
	}
	guideTransitions = transitions{
		StatusDraft:  {StatusIssued, StatusCancelled},
		StatusIssued: {StatusDelivered, StatusCancelled},
	}
	noteTransitions = transitions{
		StatusPending: {StatusApplied, StatusCancelled},
	}
)

var documentRules = map[DocumentKind]kindRules{
	KindInvoice: {
		initial:     StatusPending,
		open:        []DocumentStatus{StatusPending, StatusOverdue},
		transitions: billingTransitions,
		module:      ModuleSales,
	},
	KindPurchase: {
		initial:     StatusPending,
		open:        []DocumentStatus{StatusPending, StatusOverdue},
		transitions: billingTransitions,
		module:      ModulePurchases,
	},
	KindQuote: {
		initial: StatusDraft,
		open:    []DocumentStatus{StatusDraft, StatusSent},
		transitions: transitions{
			StatusDraft:    {StatusSent, StatusRejected},
			StatusSent:     {StatusAccepted, StatusRejected},
			StatusAccepted: {StatusConverted},
		},
		module: ModuleSales,
	},
	KindDeliveryGuide: {
		initial:     StatusDraft,
		open:        []DocumentStatus{StatusDraft, StatusIssued},
		transitions: guideTransitions,
		module:      ModuleDocuments,
	},
	KindTransportGuide: {
		initial:     StatusDraft,
		open:        []DocumentStatus{StatusDraft, StatusIssued},
		transitions: guideTransitions,
		module:      ModuleDocuments,
	},
	KindDebitNote: {
		initial:     StatusPending,
		open:        []DocumentStatus{StatusPending},
		transitions: noteTransitions,
		module:      ModuleDocuments,
	},
	KindCreditNote: {
		initial:     StatusPending,
		open:        []DocumentStatus{StatusPending},
		transitions: noteTransitions,
		module:      ModuleDocuments,
	},
}

// DocumentKinds lists every document kind in a fixed order.
func DocumentKinds() []DocumentKind {
	return []DocumentKind{
		KindInvoice, KindPurchase, KindQuote,
		KindDeliveryGuide, KindTransportGuide,
		KindDebitNote, KindCreditNote,
	}
}

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	_, ok := documentRules[k]
	return ok
}

// InitialStatus is the status new documents of the kind start in.
func (k DocumentKind) InitialStatus() DocumentStatus {
	return documentRules[k].initial
}

// Module is the audit module for changes to documents of the kind.
func (k DocumentKind) Module() Module {
	if rules, ok := documentRules[k]; ok {
		return rules.module
	}
	return ModuleDocuments
}

// OpenStatuses returns the statuses counted as pending for the kind.
func OpenStatuses(kind DocumentKind) StatusSet {
	return NewStatusSet(documentRules[kind].open...)
}

// CanTransition reports whether kind allows moving from one status to another.
func CanTransition(kind DocumentKind, from, to DocumentStatus) bool {
	rules, ok := documentRules[kind]
	if !ok {
		return false
	}
	for _, next := range rules.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DocumentLine is one priced line of a document.
type DocumentLine struct {
	ProductID      string `json:"product_id,omitempty"`
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

func (l DocumentLine) TotalCents() int64 {
	return l.Quantity * l.UnitPriceCents
}

// Document is the single variant type for invoices, purchases, quotes,
// guides and notes.
type Document struct {
	ID        string         `json:"id"`
	Kind      DocumentKind   `json:"kind"`
	Number    string         `json:"number"`
	PartyID   string         `json:"party_id"`
	Status    DocumentStatus `json:"status"`
	IssuedAt  time.Time      `json:"issued_at"`
	DueAt     *time.Time     `json:"due_at,omitempty"`
	Lines     []DocumentLine `json:"lines,omitempty"`
	SourceID  string         `json:"source_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Total is the canonical document amount in cents.
func (d *Document) Total() int64 {
	if d == nil {
		return 0
	}
	var total int64
	for _, line := range d.Lines {
		total += line.TotalCents()
	}
	return total
}

func (d *Document) Validate() error {
	if d == nil {
		return ErrInvalidPayload
	}
	if !d.Kind.Valid() {
		return Invalidf("unknown document kind %q", d.Kind)
	}
	if d.PartyID == "" {
		return Invalidf("party id is required")
	}
	for _, line := range d.Lines {
		if line.Quantity < 0 || line.UnitPriceCents < 0 {
			return Invalidf("line quantities and prices must be non-negative")
		}
	}
	return nil
}

// Transition moves the document to status to when the kind allows it.
func (d *Document) Transition(to DocumentStatus) error {
	if !CanTransition(d.Kind, d.Status, to) {
		return WrapError(ErrCodeInvalid, "illegal status transition",
			Invalidf("%s cannot move from %s to %s", d.Kind, d.Status, to))
	}
	d.Status = to
	return nil
}

// StatusSet is a set of document statuses.
type StatusSet map[DocumentStatus]struct{}

func NewStatusSet(statuses ...DocumentStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

func (s StatusSet) Contains(status DocumentStatus) bool {
	_, ok := s[status]
	return ok
}

// PendingTotal sums the totals of documents whose status is in open.
// Statuses outside the set, including unknown ones, are excluded.
func PendingTotal(docs []Document, open StatusSet) int64 {
	var sum int64
	for i := range docs {
		if open.Contains(docs[i].Status) {
			sum += docs[i].Total()
		}
	}
	return sum
}

// PendingSummary is the open amount and count for one document kind.
type PendingSummary struct {
	Kind       DocumentKind `json:"kind"`
	Count      int          `json:"count"`
	TotalCents int64        `json:"total_cents"`
}

// SummarizePending filters docs to kind and sums the kind's open statuses.
func SummarizePending(docs []Document, kind DocumentKind) PendingSummary {
	open := OpenStatuses(kind)
	summary := PendingSummary{Kind: kind}
	for i := range docs {
		if docs[i].Kind != kind || !open.Contains(docs[i].Status) {
			continue
		}
		summary.Count++
		summary.TotalCents += docs[i].Total()
	}
	return summary
}
