package stores

import (
	"context"
	"path/filepath"
	"testing"
)

// setupTestStore creates a migrated SQLite store in a temporary folder.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "lets.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var count int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
		t.Fatalf("settings table is not accessible: %v", err)
	}

	// Migrating twice is a no-op.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSQLiteStore_MigrateBeforeInit(t *testing.T) {
	store, _ := NewSQLiteStore(filepath.Join(t.TempDir(), "lets.db"))
	if err := store.Migrate(context.Background()); err == nil {
		t.Fatal("expected an error when migrating an unopened store")
	}
}

func TestSQLiteStore_EmptyLoad(t *testing.T) {
	store := setupTestStore(t)

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("expected empty document, got %v", doc)
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := map[string]map[string]any{
		"lets":  {"verbose": "on", "plugin_folders": []string{"/a", "/b"}},
		"cmake": {"env": map[string]string{"CC": "clang"}},
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if doc["lets"]["verbose"] != "on" {
		t.Errorf("expected verbose on, got %v", doc["lets"]["verbose"])
	}
	folders, ok := doc["lets"]["plugin_folders"].([]any)
	if !ok || len(folders) != 2 || folders[0] != "/a" || folders[1] != "/b" {
		t.Errorf("unexpected plugin_folders %#v", doc["lets"]["plugin_folders"])
	}
	env, ok := doc["cmake"]["env"].(map[string]any)
	if !ok || env["CC"] != "clang" {
		t.Errorf("unexpected env %#v", doc["cmake"]["env"])
	}

	// Save replaces the whole document.
	if err := store.Save(ctx, map[string]map[string]any{"lets": {"verbose": "off"}}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	doc, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if _, ok := doc["cmake"]; ok {
		t.Error("expected cmake context to be gone after overwrite")
	}
	if len(doc["lets"]) != 1 {
		t.Errorf("expected a single lets setting, got %v", doc["lets"])
	}
}
