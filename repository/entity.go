package repository

import (
	"context"

	"github.com/fastygo/erp-audit/domain"
)

type PartyFilter struct {
	Kind domain.PartyKind
}

type PartyRepository interface {
	GetParty(ctx context.Context, id string) (*domain.Party, error)
	ListParties(ctx context.Context, filter PartyFilter) ([]domain.Party, error)
	SaveParty(ctx context.Context, party *domain.Party) error
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SaveProduct(ctx context.Context, product *domain.Product) error
}

type DocumentFilter struct {
	Kind    domain.DocumentKind
	PartyID string
	Status  domain.DocumentStatus
}

type DocumentRepository interface {
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)
	SaveDocument(ctx context.Context, doc *domain.Document) error
	// UpdateDocumentStatus moves the document from one status to another
	// only if it is still in from; otherwise it returns ErrStatusChanged.
	UpdateDocumentStatus(ctx context.Context, id string, from, to domain.DocumentStatus) (*domain.Document, error)
}

type LedgerRepository interface {
	AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error
	ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)
}

// EntityStore bundles the CRUD collections backing the back-office screens.
type EntityStore interface {
	PartyRepository
	ProductRepository
	DocumentRepository
	LedgerRepository
}

// Matches reports whether doc passes the filter.
func (f DocumentFilter) Matches(doc *domain.Document) bool {
	if f.Kind != "" && doc.Kind != f.Kind {
		return false
	}
	if f.PartyID != "" && doc.PartyID != f.PartyID {
		return false
	}
	if f.Status != "" && doc.Status != f.Status {
		return false
	}
	return true
}
