package domain

import "time"

// Anonymous identity recorded when an action happens without a signed-in user.
const (
	AnonymousActorID   = "anonymous"
	AnonymousActorName = "Visitante"
)

// Module tags the subsystem an audit event belongs to.
type Module string

const (
	ModuleAuth      Module = "Auth"
	ModuleParties   Module = "Terceiros"
	ModuleStock     Module = "Stock"
	ModuleSales     Module = "Vendas"
	ModulePurchases Module = "Compras"
	ModuleTreasury  Module = "Tesouraria"
	ModuleDocuments Module = "Documentos"
	ModuleUsers     Module = "Utilizadores"
	ModuleSystem    Module = "Sistema"
)

var knownModules = map[Module]struct{}{
	ModuleAuth:      {},
	ModuleParties:   {},
	ModuleStock:     {},
	ModuleSales:     {},
	ModulePurchases: {},
	ModuleTreasury:  {},
	ModuleDocuments: {},
	ModuleUsers:     {},
	ModuleSystem:    {},
}

// Known reports whether m is one of the recognised module tags.
// Unrecognised tags are still stored verbatim.
func (m Module) Known() bool {
	_, ok := knownModules[m]
	return ok
}

// AuditEvent is an immutable record of something a user did.
type AuditEvent struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	Module    Module    `json:"module"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAuditEvent builds an event for the given identity. A nil identity records
// the anonymous sentinel.
func NewAuditEvent(identity *Identity, action string, module Module, details string) AuditEvent {
	event := AuditEvent{
		ActorID:   AnonymousActorID,
		ActorName: AnonymousActorName,
		Action:    action,
		Module:    module,
		Details:   details,
	}
	if identity != nil && identity.ID != "" {
		event.ActorID = identity.ID
		event.ActorName = identity.DisplayName()
	}
	return event
}

// Normalized returns a copy whose missing timestamp is replaced by now.
func (e AuditEvent) Normalized(now time.Time) AuditEvent {
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}
