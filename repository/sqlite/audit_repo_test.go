package sqlite

import (
	"context"
	"testing"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

func setupRepo(t *testing.T) repository.AuditRepository {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuditRepository(db)
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	event := domain.AuditEvent{
		ActorID:   "u-1",
		ActorName: "admin@x.com",
		Action:    "Login",
		Module:    domain.ModuleAuth,
		Details:   "user x logged in",
	}
	if err := repo.Insert(ctx, &event); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if event.ID == "" {
		t.Error("expected generated ID")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected store-assigned timestamp")
	}
}

func TestRecentNewestFirstAndLimited(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	actions := []string{"first", "second", "third"}
	for _, action := range actions {
		event := domain.AuditEvent{ActorID: "u-1", ActorName: "a", Action: action, Module: domain.ModuleSystem}
		if err := repo.Insert(ctx, &event); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	events, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != "third" || events[1].Action != "second" {
		t.Errorf("order = [%s %s], want [third second]", events[0].Action, events[1].Action)
	}
	if events[0].Timestamp.Before(events[1].Timestamp) {
		t.Error("expected timestamps in descending order")
	}
}

func TestEmptyStringsStoredAsIs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	event := domain.AuditEvent{ActorID: domain.AnonymousActorID, ActorName: domain.AnonymousActorName}
	if err := repo.Insert(ctx, &event); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	events, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Action != "" || events[0].Module != "" || events[0].Details != "" {
		t.Errorf("expected empty fields, got %+v", events[0])
	}
}

func TestAppendOnly(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	repo := NewAuditRepository(db)

	event := domain.AuditEvent{ActorID: "u", ActorName: "u", Action: "Criar Cliente", Module: domain.ModuleParties}
	if err := repo.Insert(context.Background(), &event); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := db.Exec(`UPDATE audit_events SET action = 'x' WHERE id = ?`, event.ID); err == nil {
		t.Error("expected update to be rejected")
	}
	if _, err := db.Exec(`DELETE FROM audit_events WHERE id = ?`, event.ID); err == nil {
		t.Error("expected delete to be rejected")
	}
}
