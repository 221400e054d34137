package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"finance-backoffice/internal/store"
)

type note struct {
	Title string `json:"title"`
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	if err := s.Create(ctx, "notes", "n1", note{Title: "first"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	doc, err := s.Get(ctx, "notes", "n1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var got note
	if err := json.Unmarshal(doc.Data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.Title != "first" {
		t.Errorf("title = %q, want first", got.Title)
	}

	if err := s.Update(ctx, "notes", "n1", note{Title: "second"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	doc, err = s.Get(ctx, "notes", "n1")
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if err := json.Unmarshal(doc.Data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.Title != "second" {
		t.Errorf("title = %q, want second", got.Title)
	}

	if err := s.Delete(ctx, "notes", "n1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "notes", "n1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	if _, err := s.Get(ctx, "notes", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get = %v, want ErrNotFound", err)
	}
	if err := s.Update(ctx, "notes", "missing", note{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "notes", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_DuplicateCreate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	if err := s.Create(ctx, "notes", "n1", note{Title: "first"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Create(ctx, "notes", "n1", note{Title: "again"}); err == nil {
		t.Error("duplicate create should fail")
	}
}

func TestMemoryStore_GetAllSorted(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	for _, id := range []string{"c", "a", "b"} {
		if err := s.Create(ctx, "notes", id, note{Title: id}); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}
	// Distinct collections must not leak into each other.
	if err := s.Create(ctx, "other", "z", note{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	docs, err := s.GetAll(ctx, "notes")
	if err != nil {
		t.Fatalf("getall failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if docs[i].ID != want {
			t.Errorf("docs[%d].ID = %q, want %q", i, docs[i].ID, want)
		}
	}
}

func TestMemoryStore_FailWrites(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	boom := errors.New("disk on fire")
	s.FailWrites = func(collection, id string) error {
		if id == "n2" {
			return boom
		}
		return nil
	}

	if err := s.Create(ctx, "notes", "n1", note{}); err != nil {
		t.Fatalf("create n1 failed: %v", err)
	}
	if err := s.Create(ctx, "notes", "n2", note{}); !errors.Is(err, boom) {
		t.Errorf("create n2 = %v, want injected error", err)
	}
	if _, err := s.Get(ctx, "notes", "n2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rejected write must not be applied, get = %v", err)
	}

	s.FailWrites = nil
	if err := s.Create(ctx, "notes", "n2", note{}); err != nil {
		t.Fatalf("create after clearing hook failed: %v", err)
	}
}
