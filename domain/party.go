package domain

import "time"

type PartyKind string

const (
	PartyClient   PartyKind = "client"
	PartySupplier PartyKind = "supplier"
)

// Party is a client or supplier.
type Party struct {
	ID        string    `json:"id"`
	Kind      PartyKind `json:"kind"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Party) Validate() error {
	if p == nil || p.Name == "" {
		return Invalidf("party name is required")
	}
	if p.Kind != PartyClient && p.Kind != PartySupplier {
		return Invalidf("unknown party kind %q", p.Kind)
	}
	return nil
}
