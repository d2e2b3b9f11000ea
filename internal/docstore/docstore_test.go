package docstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/JimmyUA/menu-master/internal/database"
	"github.com/JimmyUA/menu-master/internal/docstore"
)

type testDoc struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// runStoreTests exercises the Collection contract against a Store
// implementation.
func runStoreTests(t *testing.T, store docstore.Store) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		coll := store.Collection("missing")
		if _, err := coll.Get(ctx, "nope"); !errors.Is(err, docstore.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		coll := store.Collection("roundtrip")
		original := testDoc{Name: "first", Owner: "u1", Count: 3}
		if err := coll.Set(ctx, "doc-1", &original); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		raw, err := coll.Get(ctx, "doc-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		var loaded testDoc
		if err := json.Unmarshal(raw, &loaded); err != nil {
			t.Fatalf("Failed to unmarshal document: %v", err)
		}
		if loaded != original {
			t.Errorf("Expected %+v, got %+v", original, loaded)
		}
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		coll := store.Collection("overwrite")
		if err := coll.Set(ctx, "doc-1", &testDoc{Name: "old"}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := coll.Set(ctx, "doc-1", &testDoc{Name: "new"}); err != nil {
			t.Fatalf("Second set failed: %v", err)
		}

		raw, err := coll.Get(ctx, "doc-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		var loaded testDoc
		if err := json.Unmarshal(raw, &loaded); err != nil {
			t.Fatalf("Failed to unmarshal document: %v", err)
		}
		if loaded.Name != "new" {
			t.Errorf("Expected overwritten name 'new', got '%s'", loaded.Name)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		coll := store.Collection("delete")
		if err := coll.Set(ctx, "doc-1", &testDoc{Name: "gone"}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := coll.Delete(ctx, "doc-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := coll.Get(ctx, "doc-1"); !errors.Is(err, docstore.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		// Deleting again is a no-op.
		if err := coll.Delete(ctx, "doc-1"); err != nil {
			t.Errorf("Expected repeated delete to succeed, got %v", err)
		}
	})

	t.Run("QueryByField", func(t *testing.T) {
		coll := store.Collection("query")
		docs := []testDoc{
			{Name: "a", Owner: "u1"},
			{Name: "b", Owner: "u1"},
			{Name: "c", Owner: "u2"},
		}
		for _, doc := range docs {
			if err := coll.Set(ctx, doc.Name, &doc); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}

		matches, err := coll.Query(ctx, "owner", "u1")
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(matches) != 2 {
			t.Errorf("Expected 2 documents for owner u1, got %d", len(matches))
		}

		none, err := coll.Query(ctx, "owner", "u9")
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no documents for owner u9, got %d", len(none))
		}
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		first := store.Collection("iso-a")
		second := store.Collection("iso-b")
		if err := first.Set(ctx, "shared-id", &testDoc{Name: "a"}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if _, err := second.Get(ctx, "shared-id"); !errors.Is(err, docstore.ErrNotFound) {
			t.Errorf("Expected collections to be isolated, got %v", err)
		}
	})

	t.Run("All", func(t *testing.T) {
		coll := store.Collection("all")
		for _, name := range []string{"a", "b", "c"} {
			if err := coll.Set(ctx, name, &testDoc{Name: name}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}
		docs, err := coll.All(ctx)
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if len(docs) != 3 {
			t.Errorf("Expected 3 documents, got %d", len(docs))
		}
	})

	t.Run("StaleIDs", func(t *testing.T) {
		coll := store.Collection("stale")
		for _, name := range []string{"a", "b", "c"} {
			if err := coll.Set(ctx, name, &testDoc{Name: name}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}

		// Nothing is stale against a cutoff in the past.
		ids, err := coll.StaleIDs(ctx, time.Now().Add(-time.Hour), 10)
		if err != nil {
			t.Fatalf("StaleIDs failed: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("Expected no stale documents, got %v", ids)
		}

		// Everything is stale against a cutoff in the future, capped by limit.
		ids, err = coll.StaleIDs(ctx, time.Now().Add(time.Hour), 2)
		if err != nil {
			t.Fatalf("StaleIDs failed: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 stale documents with limit 2, got %d", len(ids))
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, docstore.NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	runStoreTests(t, docstore.NewSQLiteStore(db.SQL))
}
