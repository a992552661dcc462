// Package memory holds process-local repositories. They are created at start,
// injected where needed and discarded at exit; nothing survives a restart.
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

// AuditLog is an append-only in-memory event store.
type AuditLog struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
	now    func() time.Time
	last   time.Time
}

var _ repository.AuditRepository = (*AuditLog)(nil)

// NewAuditLog builds an empty log. A nil clock uses time.Now.
func NewAuditLog(now func() time.Time) *AuditLog {
	if now == nil {
		now = time.Now
	}
	return &AuditLog{now: now}
}

func (l *AuditLog) Insert(ctx context.Context, event *domain.AuditEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	ts := l.now().UTC()
	if ts.Before(l.last) {
		ts = l.last
	}
	l.last = ts
	event.Timestamp = ts
	l.events = append(l.events, *event)
	return nil
}

func (l *AuditLog) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.AuditEvent, 0, min(limit, len(l.events)))
	for i := len(l.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.events[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Len returns the number of stored events.
func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
