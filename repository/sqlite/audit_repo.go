package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository returns an audit store backed by db.
func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO audit_events (id, actor_id, actor_name, action, module, details)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING created_at`,
		event.ID,
		event.ActorID,
		event.ActorName,
		event.Action,
		string(event.Module),
		event.Details,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	event.Timestamp = parseTimestamp(createdAt)
	return nil
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_id, actor_name, action, module, details, created_at
		FROM audit_events
		ORDER BY created_at DESC, seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.AuditEvent, 0)
	for rows.Next() {
		var (
			event     domain.AuditEvent
			module    string
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.ActorID, &event.ActorName, &event.Action, &module, &event.Details, &createdAt); err != nil {
			return nil, err
		}
		event.Module = domain.Module(module)
		event.Timestamp = parseTimestamp(createdAt)
		events = append(events, event)
	}
	return events, rows.Err()
}

// parseTimestamp leaves the zero time for unparsable values; consumers
// normalise it.
func parseTimestamp(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.DateTime, value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
