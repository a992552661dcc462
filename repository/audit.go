package repository

import (
	"context"

	"github.com/fastygo/erp-audit/domain"
)

// AuditRepository is the append-only event store. Insert assigns the ID and
// the server timestamp; Recent returns at most limit events, newest first.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

// AuditNotifier propagates "the log changed" signals between service instances.
type AuditNotifier interface {
	Publish(ctx context.Context, eventID string) error
	Listen(ctx context.Context, onChange func(eventID string)) error
}
