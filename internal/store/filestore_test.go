package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"attendcore/internal/embedding"
)

func TestFileStore_UpsertAll(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := fs.Upsert(ctx, testRef(1, 0.1, 0.2, 0.3)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := fs.Upsert(ctx, testRef(2, 0.4, 0.5, 0.6)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	refs, err := fs.All(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}

	byID := make(map[int64]Reference)
	for _, ref := range refs {
		byID[ref.StudentID] = ref
	}
	ref, ok := byID[1]
	if !ok {
		t.Fatal("student 1 missing")
	}
	if ref.Embedding.Variant != embedding.VariantFacenet {
		t.Errorf("expected variant to round-trip, got %q", ref.Embedding.Variant)
	}
	if len(ref.Embedding.Vector) != 3 || ref.Embedding.Vector[0] != 0.1 {
		t.Errorf("expected vector to round-trip, got %v", ref.Embedding.Vector)
	}
}

func TestFileStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := fs.Upsert(ctx, testRef(1, 1, 0)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := fs.Upsert(ctx, testRef(1, 0, 1)); err != nil {
		t.Fatalf("failed to replace: %v", err)
	}

	refs, err := fs.All(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference after replace, got %d", len(refs))
	}
	if refs[0].Embedding.Vector[1] != 1 {
		t.Errorf("expected the replacement vector, got %v", refs[0].Embedding.Vector)
	}
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := fs.Upsert(ctx, testRef(1, 1, 0)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := fs.Delete(ctx, 1); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	// Deleting a missing student is not an error.
	if err := fs.Delete(ctx, 42); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}

	refs, err := fs.All(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected empty store, got %d references", len(refs))
	}
}

func TestFileStore_SkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := fs.Upsert(ctx, testRef(1, 1, 0)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to plant stray file: %v", err)
	}

	refs, err := fs.All(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(refs) != 1 || refs[0].StudentID != 1 {
		t.Errorf("expected only the valid reference, got %+v", refs)
	}
}
