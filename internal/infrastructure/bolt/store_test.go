package bolt

import (
	"errors"
	"path/filepath"
	"testing"
)

type record struct {
	Name string `json:"name"`
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "test.db"), "items", "log")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGet(t *testing.T) {
	store := openStore(t)
	if err := store.Put("items", "a", record{Name: "alpha"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got record
	if err := store.Get("items", "a", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "alpha" {
		t.Errorf("Name = %q, want %q", got.Name, "alpha")
	}
	if err := store.Get("items", "missing", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing error = %v, want ErrNotFound", err)
	}
}

func TestAppendKeepsInsertionOrder(t *testing.T) {
	store := openStore(t)
	for _, name := range []string{"one", "two", "three"} {
		if err := store.Append("log", record{Name: name}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	var keys []string
	if err := store.ForEach("log", func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	}); err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(keys) != 3 || keys[0] >= keys[1] || keys[1] >= keys[2] {
		t.Errorf("keys = %v, want ascending sequence keys", keys)
	}
	if n, _ := store.Size("log"); n != 3 {
		t.Errorf("Size = %d, want 3", n)
	}
}
