package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/erp-audit/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(time.Minute)
	ctx := context.Background()

	session := &domain.Session{ID: "s1", UserID: "u1", Email: "admin@x.com"}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "admin@x.com" {
		t.Errorf("Email = %q, want %q", got.Email, "admin@x.com")
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Get after delete error = %v, want NOT_FOUND", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	store := NewSessionStore(time.Minute)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	session := &domain.Session{ID: "old", UserID: "u1", CreatedAt: past, ExpiresAt: past.Add(time.Second)}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Get(ctx, "old"); err == nil {
		t.Errorf("Get returned expired session")
	}
}

func TestUserStoreLookupIsCaseInsensitive(t *testing.T) {
	users := NewUserStore()
	ctx := context.Background()
	if err := users.Upsert(ctx, &domain.User{Email: "Admin@X.com", Status: "active"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := users.GetByEmail(ctx, "admin@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Email != "admin@x.com" {
		t.Errorf("Email = %q, want lowercased", got.Email)
	}
	if err := users.Upsert(ctx, &domain.User{Email: "ADMIN@x.com"}); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("duplicate Upsert error = %v, want CONFLICT", err)
	}
}
