// Package bolt implements the entity repositories on a BoltDB file.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/erp-audit/domain"
	boltstore "github.com/fastygo/erp-audit/internal/infrastructure/bolt"
	"github.com/fastygo/erp-audit/repository"
)

const (
	bucketParties   = "parties"
	bucketProducts  = "products"
	bucketDocuments = "documents"
	bucketLedger    = "ledger"
)

// Buckets lists the buckets Open must create for the entity store.
var Buckets = []string{bucketParties, bucketProducts, bucketDocuments, bucketLedger}

type entityStore struct {
	db *boltstore.Store
	// uniqueness checks read then write
	mu sync.Mutex
}

// NewEntityStore wraps an opened bolt store created with Buckets.
func NewEntityStore(db *boltstore.Store) repository.EntityStore {
	return &entityStore{db: db}
}

func (s *entityStore) GetParty(ctx context.Context, id string) (*domain.Party, error) {
	var party domain.Party
	if err := s.get(bucketParties, id, &party, domain.ErrPartyNotFound); err != nil {
		return nil, err
	}
	return &party, nil
}

func (s *entityStore) ListParties(ctx context.Context, filter repository.PartyFilter) ([]domain.Party, error) {
	var out []domain.Party
	err := s.db.ForEach(bucketParties, func(_ string, raw []byte) error {
		var party domain.Party
		if err := json.Unmarshal(raw, &party); err != nil {
			return err
		}
		if filter.Kind == "" || party.Kind == filter.Kind {
			out = append(out, party)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (s *entityStore) SaveParty(ctx context.Context, party *domain.Party) error {
	if err := party.Validate(); err != nil {
		return err
	}
	if party.ID == "" {
		party.ID = uuid.NewString()
	}
	if party.CreatedAt.IsZero() {
		party.CreatedAt = time.Now().UTC()
	}
	return s.db.Put(bucketParties, party.ID, party)
}

func (s *entityStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := s.get(bucketProducts, id, &product, domain.ErrProductNotFound); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *entityStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := s.db.ForEach(bucketProducts, func(_ string, raw []byte) error {
		var product domain.Product
		if err := json.Unmarshal(raw, &product); err != nil {
			return err
		}
		out = append(out, product)
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, err
}

func (s *entityStore) SaveProduct(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.SKU != "" {
		products, err := s.ListProducts(ctx)
		if err != nil {
			return err
		}
		for _, existing := range products {
			if existing.ID != product.ID && existing.SKU == product.SKU {
				return domain.ErrDuplicateIdentifier
			}
		}
	}
	product.UpdatedAt = time.Now().UTC()
	return s.db.Put(bucketProducts, product.ID, product)
}

func (s *entityStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	if err := s.get(bucketDocuments, id, &doc, domain.ErrDocumentNotFound); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *entityStore) ListDocuments(ctx context.Context, filter repository.DocumentFilter) ([]domain.Document, error) {
	var out []domain.Document
	err := s.db.ForEach(bucketDocuments, func(_ string, raw []byte) error {
		var doc domain.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if filter.Matches(&doc) {
			out = append(out, doc)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (s *entityStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Number != "" {
		existing, err := s.ListDocuments(ctx, repository.DocumentFilter{Kind: doc.Kind})
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.ID != doc.ID && other.Number == doc.Number {
				return domain.ErrDuplicateIdentifier
			}
		}
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return s.db.Put(bucketDocuments, doc.ID, doc)
}

func (s *entityStore) UpdateDocumentStatus(ctx context.Context, id string, from, to domain.DocumentStatus) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.Update(bucketDocuments, id, &doc, func() error {
		if doc.Status != from {
			return domain.ErrStatusChanged
		}
		doc.Status = to
		doc.UpdatedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, boltstore.ErrNotFound) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *entityStore) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	return s.db.Append(bucketLedger, entry)
}

func (s *entityStore) ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	out := make([]domain.LedgerEntry, 0)
	err := s.db.ForEach(bucketLedger, func(_ string, raw []byte) error {
		var entry domain.LedgerEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		if accountID == "" || entry.AccountID == accountID {
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

func (s *entityStore) get(bucket, id string, dst any, notFound error) error {
	err := s.db.Get(bucket, id, dst)
	if errors.Is(err, boltstore.ErrNotFound) {
		return notFound
	}
	return err
}
