package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already migrated; a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2 (entries + index)", result.Version)
	}
	if result.Dirty {
		t.Error("migration left the database dirty")
	}
}

func TestPutGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "copilot-history-1", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := db.Get(ctx, "copilot-history-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(got) != "[]" {
		t.Errorf("Get = (%q, %v), want ([], true)", got, ok)
	}
}

func TestGetMissing(t *testing.T) {
	db := testDB(t)

	got, ok, err := db.Get(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if ok || got != nil {
		t.Errorf("Get(missing) = (%q, %v), want (nil, false)", got, ok)
	}
}

func TestPutOverwrites(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := db.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}

	got, _, err := db.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("value = %q, want v2", got)
	}
	count, err := db.EntryCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (overwrite must not duplicate)", count)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := db.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.Get(ctx, "k"); ok {
		t.Error("key still present after Delete")
	}
	// Deleting again is not an error.
	if err := db.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete error = %v", err)
	}
}

func TestKeysByPrefix(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, k := range []string{"copilot-history-1", "copilot-history-2", "inbox-threads"} {
		if err := db.Put(ctx, k, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := db.Keys(ctx, "copilot-history-")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if k == "inbox-threads" {
			t.Errorf("prefix filter leaked %q", k)
		}
	}
}

func TestOpenUsesWAL(t *testing.T) {
	db := testDB(t)

	mode, err := db.JournalMode(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal mode = %q, want wal", mode)
	}
	if n := db.Stats().MaxOpenConnections; n != 1 {
		t.Errorf("max open connections = %d, want 1", n)
	}
}

func TestConcurrentPutsAllLand(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.Put(ctx, fmt.Sprintf("copilot-history-%d", i), []byte(`[]`))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	keys, err := db.Keys(ctx, "copilot-history-")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 16 {
		t.Errorf("got %d keys, want 16", len(keys))
	}
}
