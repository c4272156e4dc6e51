package storage

import (
	"bytes"
	"context"
	"testing"
)

func TestFileStoreSaveAndRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	key, err := store.Save(ctx, "artifacts/job-1/spec.json", []byte(`{"a":1}`), "application/json")
	if err != nil {
		t.Fatal(err)
	}
	if key != "artifacts/job-1/spec.json" {
		t.Fatalf("unexpected stored key %q", key)
	}

	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte(`{"a":1}`)) {
		t.Fatalf("round trip mismatch: %s", data)
	}
}

func TestFileStoreOverwritesSameKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := store.Save(ctx, "k", []byte("one"), "text/plain"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "k", []byte("two"), "text/plain"); err != nil {
		t.Fatal(err)
	}
	data, err := store.Read(ctx, "k")
	if err != nil || string(data) != "two" {
		t.Fatalf("expected overwrite, got %q %v", data, err)
	}
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "..", "../evil", "a/../../evil"} {
		if _, err := store.Save(ctx, key, []byte("x"), ""); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}
