// Package documents manages invoices, purchases, quotes, guides and notes.
package documents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
	"github.com/fastygo/erp-audit/usecase"
)

const (
	ActionCreateDocument = "Create Document"
	ActionChangeStatus   = "Change Status"
	ActionConvertQuote   = "Convert Quote"
)

var numberPrefix = map[domain.DocumentKind]string{
	domain.KindInvoice:        "FT",
	domain.KindPurchase:       "FC",
	domain.KindQuote:          "OR",
	domain.KindDeliveryGuide:  "GR",
	domain.KindTransportGuide: "GT",
	domain.KindDebitNote:      "ND",
	domain.KindCreditNote:     "NC",
}

type UseCase struct {
	docs    repository.DocumentRepository
	parties repository.PartyRepository
	audit   usecase.ActionLogger
	logger  *zap.Logger
	now     func() time.Time
}

func New(docs repository.DocumentRepository, parties repository.PartyRepository, audit usecase.ActionLogger, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = usecase.NopActionLogger{}
	}
	return &UseCase{
		docs:    docs,
		parties: parties,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *UseCase) List(ctx context.Context, filter repository.DocumentFilter) ([]domain.Document, error) {
	return uc.docs.ListDocuments(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Document, error) {
	return uc.docs.GetDocument(ctx, id)
}

// Create stores a new document in its kind's initial status, numbering it
// when no number was given.
func (uc *UseCase) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if !doc.Kind.Valid() {
		return nil, domain.Invalidf("unknown document kind %q", doc.Kind)
	}
	if _, err := uc.parties.GetParty(ctx, doc.PartyID); err != nil {
		return nil, err
	}

	doc.ID = ""
	doc.SourceID = ""
	doc.Status = doc.Kind.InitialStatus()
	if doc.IssuedAt.IsZero() {
		doc.IssuedAt = uc.now().UTC()
	}
	if doc.Number == "" {
		number, err := uc.nextNumber(ctx, doc.Kind, doc.IssuedAt)
		if err != nil {
			return nil, err
		}
		doc.Number = number
	}
	if err := uc.docs.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	uc.audit.LogAction(ctx, ActionCreateDocument, doc.Kind.Module(),
		fmt.Sprintf("%s %s total %d", doc.Kind, doc.Number, doc.Total()))
	return doc, nil
}

// ChangeStatus applies a status transition allowed for the document kind.
func (uc *UseCase) ChangeStatus(ctx context.Context, id string, to domain.DocumentStatus) (*domain.Document, error) {
	if to == domain.StatusConverted {
		return nil, domain.Invalidf("quotes are converted with the convert operation")
	}
	doc, err := uc.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	from := doc.Status
	if !domain.CanTransition(doc.Kind, from, to) {
		return nil, doc.Transition(to)
	}
	doc, err = uc.docs.UpdateDocumentStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	uc.audit.LogAction(ctx, ActionChangeStatus, doc.Kind.Module(),
		fmt.Sprintf("%s %s: %s -> %s", doc.Kind, doc.Number, from, to))
	return doc, nil
}

// ConvertQuote turns an accepted quote into a pending invoice. The quote is
// marked converted first so that only one caller can invoice it; if the
// invoice cannot be stored the quote goes back to accepted.
func (uc *UseCase) ConvertQuote(ctx context.Context, quoteID string) (*domain.Document, error) {
	quote, err := uc.docs.GetDocument(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Kind != domain.KindQuote {
		return nil, domain.Invalidf("document %s is a %s, not a quote", quote.Number, quote.Kind)
	}
	from := quote.Status
	if !domain.CanTransition(quote.Kind, from, domain.StatusConverted) {
		return nil, quote.Transition(domain.StatusConverted)
	}
	quote, err = uc.docs.UpdateDocumentStatus(ctx, quoteID, from, domain.StatusConverted)
	if err != nil {
		return nil, err
	}

	invoice, err := uc.invoiceFor(ctx, quote)
	if err != nil {
		if _, rbErr := uc.docs.UpdateDocumentStatus(ctx, quoteID, domain.StatusConverted, from); rbErr != nil {
			uc.logger.Error("quote left converted without an invoice",
				zap.String("quote_id", quoteID), zap.Error(rbErr))
		}
		return nil, err
	}

	uc.audit.LogAction(ctx, ActionConvertQuote, domain.ModuleSales,
		fmt.Sprintf("%s -> %s", quote.Number, invoice.Number))
	return invoice, nil
}

func (uc *UseCase) invoiceFor(ctx context.Context, quote *domain.Document) (*domain.Document, error) {
	issued := uc.now().UTC()
	number, err := uc.nextNumber(ctx, domain.KindInvoice, issued)
	if err != nil {
		return nil, err
	}
	invoice := &domain.Document{
		Kind:     domain.KindInvoice,
		Number:   number,
		PartyID:  quote.PartyID,
		Status:   domain.KindInvoice.InitialStatus(),
		IssuedAt: issued,
		Lines:    append([]domain.DocumentLine(nil), quote.Lines...),
		SourceID: quote.ID,
	}
	if err := uc.docs.SaveDocument(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Pending sums the open documents of kind.
func (uc *UseCase) Pending(ctx context.Context, kind domain.DocumentKind) (domain.PendingSummary, error) {
	if !kind.Valid() {
		return domain.PendingSummary{}, domain.Invalidf("unknown document kind %q", kind)
	}
	docs, err := uc.docs.ListDocuments(ctx, repository.DocumentFilter{Kind: kind})
	if err != nil {
		return domain.PendingSummary{}, err
	}
	return domain.SummarizePending(docs, kind), nil
}

// PendingAll returns one pending summary per document kind.
func (uc *UseCase) PendingAll(ctx context.Context) ([]domain.PendingSummary, error) {
	docs, err := uc.docs.ListDocuments(ctx, repository.DocumentFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PendingSummary, 0, len(numberPrefix))
	for _, kind := range domain.DocumentKinds() {
		out = append(out, domain.SummarizePending(docs, kind))
	}
	return out, nil
}

func (uc *UseCase) nextNumber(ctx context.Context, kind domain.DocumentKind, issued time.Time) (string, error) {
	existing, err := uc.docs.ListDocuments(ctx, repository.DocumentFilter{Kind: kind})
	if err != nil {
		return "", err
	}
	prefix := fmt.Sprintf("%s %d/", numberPrefix[kind], issued.Year())
	taken := make(map[string]struct{}, len(existing))
	for _, doc := range existing {
		taken[doc.Number] = struct{}{}
	}
	for seq := len(existing) + 1; ; seq++ {
		candidate := fmt.Sprintf("%s%d", prefix, seq)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}
