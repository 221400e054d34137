package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"finance-backoffice/internal/store"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		);
		TRUNCATE TABLE documents;
	`)
	if err != nil {
		t.Fatalf("Failed to prepare test database: %v", err)
	}
	return pool
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	pool := setupTestDB(t) // Skips if TEST_DATABASE_URL is not set
	defer pool.Close()

	ctx := context.Background()
	s := store.NewPostgresStore(pool)

	if err := s.Create(ctx, "notes", "n1", note{Title: "first"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Create(ctx, "notes", "n1", note{Title: "again"}); err == nil {
		t.Error("duplicate create should violate the primary key")
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
	if err := s.Update(ctx, "notes", "n1", note{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update of missing doc = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "notes", "n1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestPostgresStore_GetAllScopedByCollection(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	s := store.NewPostgresStore(pool)

	for _, id := range []string{"b", "a"} {
		if err := s.Create(ctx, "notes", id, note{Title: id}); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}
	if err := s.Create(ctx, "other", "z", note{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	docs, err := s.GetAll(ctx, "notes")
	if err != nil {
		t.Fatalf("getall failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("docs not ordered by id: %q, %q", docs[0].ID, docs[1].ID)
	}
}
