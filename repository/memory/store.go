package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

// Store holds the back-office collections. It replaces module-level mock
// arrays: one Store is built at start-up and handed to the use cases.
type Store struct {
	mu        sync.RWMutex
	parties   map[string]domain.Party
	products  map[string]domain.Product
	documents map[string]domain.Document
	ledger    []domain.LedgerEntry
	order     map[string]int
	seq       int
}

var _ repository.EntityStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		parties:   make(map[string]domain.Party),
		products:  make(map[string]domain.Product),
		documents: make(map[string]domain.Document),
		order:     make(map[string]int),
	}
}

func (s *Store) track(id string) {
	if _, ok := s.order[id]; !ok {
		s.seq++
		s.order[id] = s.seq
	}
}

func (s *Store) byInsertion(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

func (s *Store) GetParty(ctx context.Context, id string) (*domain.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	party, ok := s.parties[id]
	if !ok {
		return nil, domain.ErrPartyNotFound
	}
	return &party, nil
}

func (s *Store) ListParties(ctx context.Context, filter repository.PartyFilter) ([]domain.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.parties))
	for id, party := range s.parties {
		if filter.Kind == "" || party.Kind == filter.Kind {
			ids = append(ids, id)
		}
	}
	s.byInsertion(ids)
	out := make([]domain.Party, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.parties[id])
	}
	return out, nil
}

func (s *Store) SaveParty(ctx context.Context, party *domain.Party) error {
	if err := party.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if party.ID == "" {
		party.ID = uuid.NewString()
	}
	if party.CreatedAt.IsZero() {
		party.CreatedAt = time.Now().UTC()
	}
	s.track(party.ID)
	s.parties[party.ID] = *party
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	s.byInsertion(ids)
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *Store) SaveProduct(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	for id, existing := range s.products {
		if id != product.ID && product.SKU != "" && existing.SKU == product.SKU {
			return domain.ErrDuplicateIdentifier
		}
	}
	product.UpdatedAt = time.Now().UTC()
	s.track(product.ID)
	s.products[product.ID] = *product
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return cloneDocument(doc), nil
}

func (s *Store) ListDocuments(ctx context.Context, filter repository.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.documents))
	for id, doc := range s.documents {
		if filter.Matches(&doc) {
			ids = append(ids, id)
		}
	}
	s.byInsertion(ids)
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, *cloneDocument(s.documents[id]))
	}
	return out, nil
}

func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for id, existing := range s.documents {
		if id != doc.ID && doc.Number != "" && existing.Kind == doc.Kind && existing.Number == doc.Number {
			return domain.ErrDuplicateIdentifier
		}
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.track(doc.ID)
	s.documents[doc.ID] = *cloneDocument(*doc)
	return nil
}

func (s *Store) UpdateDocumentStatus(ctx context.Context, id string, from, to domain.DocumentStatus) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	if doc.Status != from {
		return nil, domain.ErrStatusChanged
	}
	doc.Status = to
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return cloneDocument(doc), nil
}

func (s *Store) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	s.ledger = append(s.ledger, *entry)
	return nil
}

func (s *Store) ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LedgerEntry, 0)
	for _, entry := range s.ledger {
		if accountID == "" || entry.AccountID == accountID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func cloneDocument(doc domain.Document) *domain.Document {
	clone := doc
	if doc.Lines != nil {
		clone.Lines = append([]domain.DocumentLine(nil), doc.Lines...)
	}
	if doc.DueAt != nil {
		due := *doc.DueAt
		clone.DueAt = &due
	}
	return &clone
}
