package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fastygo/erp-audit/domain"
)

func TestAuditLogRecentNewestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	log := NewAuditLog(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		event := domain.AuditEvent{Action: fmt.Sprintf("a%d", i), Module: domain.ModuleStock}
		if err := log.Insert(ctx, &event); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if event.ID == "" {
			t.Fatalf("Insert did not assign an id")
		}
	}

	events, err := log.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	want := []string{"a4", "a3", "a2"}
	for i, e := range events {
		if e.Action != want[i] {
			t.Errorf("events[%d].Action = %q, want %q", i, e.Action, want[i])
		}
	}
}

func TestAuditLogClampsLimit(t *testing.T) {
	log := NewAuditLog(nil)
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		event := domain.AuditEvent{Action: "x"}
		if err := log.Insert(ctx, &event); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	events, err := log.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 100 {
		t.Errorf("len(events) = %d, want 100", len(events))
	}
}

func TestAuditLogTimestampsNeverGoBackwards(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Minute)}
	i := 0
	log := NewAuditLog(func() time.Time {
		ts := clock[i]
		i++
		return ts
	})

	first := domain.AuditEvent{Action: "first"}
	second := domain.AuditEvent{Action: "second"}
	_ = log.Insert(context.Background(), &first)
	_ = log.Insert(context.Background(), &second)

	if second.Timestamp.Before(first.Timestamp) {
		t.Errorf("second timestamp %v before first %v", second.Timestamp, first.Timestamp)
	}
}
