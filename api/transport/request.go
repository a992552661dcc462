package transport

import (
	"time"

	"github.com/fastygo/erp-audit/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogActionRequest struct {
	Action  string `json:"action"`
	Module  string `json:"module"`
	Details string `json:"details"`
}

type PartyRequest struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r PartyRequest) ToDomain() *domain.Party {
	return &domain.Party{
		Kind:  domain.PartyKind(r.Kind),
		Name:  r.Name,
		TaxID: r.TaxID,
		Email: r.Email,
		Phone: r.Phone,
	}
}

type ProductRequest struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	CurrentStock   int64  `json:"current_stock"`
	MinStock       int64  `json:"min_stock"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

func (r ProductRequest) ToDomain() *domain.Product {
	return &domain.Product{
		SKU:            r.SKU,
		Name:           r.Name,
		CurrentStock:   r.CurrentStock,
		MinStock:       r.MinStock,
		UnitPriceCents: r.UnitPriceCents,
	}
}

type StockAdjustRequest struct {
	Delta int64 `json:"delta"`
}

type DocumentRequest struct {
	Kind     string                `json:"kind"`
	Number   string                `json:"number"`
	PartyID  string                `json:"party_id"`
	IssuedAt *time.Time            `json:"issued_at"`
	DueAt    *time.Time            `json:"due_at"`
	Lines    []domain.DocumentLine `json:"lines"`
}

func (r DocumentRequest) ToDomain() *domain.Document {
	doc := &domain.Document{
		Kind:    domain.DocumentKind(r.Kind),
		Number:  r.Number,
		PartyID: r.PartyID,
		DueAt:   r.DueAt,
		Lines:   r.Lines,
	}
	if r.IssuedAt != nil {
		doc.IssuedAt = *r.IssuedAt
	}
	return doc
}

type StatusRequest struct {
	Status string `json:"status"`
}

type LedgerEntryRequest struct {
	AccountID   string     `json:"account_id"`
	Date        *time.Time `json:"date"`
	DocumentNo  string     `json:"document_no"`
	Description string     `json:"description"`
	DebitCents  int64      `json:"debit_cents"`
	CreditCents int64      `json:"credit_cents"`
}

func (r LedgerEntryRequest) ToDomain() *domain.LedgerEntry {
	entry := &domain.LedgerEntry{
		AccountID:   r.AccountID,
		DocumentNo:  r.DocumentNo,
		Description: r.Description,
		DebitCents:  r.DebitCents,
		CreditCents: r.CreditCents,
	}
	if r.Date != nil {
		entry.Date = *r.Date
	}
	return entry
}
