package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed append-only audit store.
func NewAuditRepository(pool *pgxpool.Pool) repository.AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO audit_events (id, actor_id, actor_name, action, module, details)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`

	return r.pool.QueryRow(ctx, query,
		event.ID,
		event.ActorID,
		event.ActorName,
		event.Action,
		string(event.Module),
		event.Details,
	).Scan(&event.Timestamp)
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	const query = `
	SELECT id, actor_id, actor_name, action, module, details, created_at
	FROM audit_events
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.AuditEvent, 0)
	for rows.Next() {
		var (
			event  domain.AuditEvent
			module string
		)
		if err := rows.Scan(
			&event.ID,
			&event.ActorID,
			&event.ActorName,
			&event.Action,
			&module,
			&event.Details,
			&event.Timestamp,
		); err != nil {
			return nil, err
		}
		event.Module = domain.Module(module)
		events = append(events, event)
	}
	return events, rows.Err()
}
