package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*SQLStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test-plantcare.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestSQLiteStoreNeverWritten(t *testing.T) {
	store, _ := newTestStore(t)

	data, err := store.Get(context.Background(), "plants")
	if err != nil {
		t.Fatalf("Failed to read collection: %v", err)
	}
	if data != nil {
		t.Errorf("Expected nil for a collection never written, got %s", data)
	}
}

func TestSQLiteStoreReplaceAndReopen(t *testing.T) {
	store, dbPath := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "plants", json.RawMessage(`[{"id":"1"},{"id":"2"}]`)); err != nil {
		t.Fatalf("Failed to write collection: %v", err)
	}
	// wholesale replace, not merge
	if err := store.Set(ctx, "plants", json.RawMessage(`[{"id":"3"}]`)); err != nil {
		t.Fatalf("Failed to replace collection: %v", err)
	}
	if err := store.SetMany(ctx, map[string]json.RawMessage{
		"care_events": json.RawMessage(`[{"id":"e1"}]`),
		"other":       json.RawMessage(`[]`),
	}); err != nil {
		t.Fatalf("Failed to write batch: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	data, err := reopened.Get(ctx, "plants")
	if err != nil {
		t.Fatalf("Failed to read collection: %v", err)
	}
	if string(data) != `[{"id":"3"}]` {
		t.Errorf("Expected replaced collection after restart, got %s", data)
	}
	events, _ := reopened.Get(ctx, "care_events")
	if string(events) != `[{"id":"e1"}]` {
		t.Errorf("Expected batch-written events, got %s", events)
	}
}

func TestNewSQLStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := NewSQLStore("postgres", "whatever"); err == nil {
		t.Error("Expected an error for an unsupported driver")
	}
}
