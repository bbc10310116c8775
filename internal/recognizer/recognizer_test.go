package recognizer

import (
	"context"
	"math"
	"testing"

	"attendcore/internal/embedding"
	"attendcore/internal/match"
	"attendcore/internal/store"
)

// tableExtractor maps frame bytes (as string) to canned embeddings.
type tableExtractor struct {
	table map[string][]float32
}

func (e *tableExtractor) Name() string               { return "table" }
func (e *tableExtractor) Variant() embedding.Variant { return embedding.VariantFacenet }

func (e *tableExtractor) Extract(_ context.Context, imageData []byte) (embedding.Embedding, bool) {
	vec, ok := e.table[string(imageData)]
	if !ok {
		return embedding.Embedding{}, false
	}
	return embedding.Embedding{Variant: embedding.VariantFacenet, Vector: vec}, true
}

func newTestService(t *testing.T, table map[string][]float32, refs ...store.Reference) *Service {
	t.Helper()
	durable := store.NewMemoryStore()
	cache := store.NewCache(durable, nil)
	ctx := context.Background()
	for _, ref := range refs {
		if err := cache.Enroll(ctx, ref); err != nil {
			t.Fatalf("failed to seed reference: %v", err)
		}
	}
	return New(&tableExtractor{table: table}, match.NewMatcher(-1, -1), cache)
}

func facenetRef(id int64, vec ...float32) store.Reference {
	return store.Reference{
		StudentID: id,
		Embedding: embedding.Embedding{Variant: embedding.VariantFacenet, Vector: vec},
	}
}

func TestRecognize_MajorityAccepts(t *testing.T) {
	table := map[string][]float32{
		"frameA": {1, 0, 0},
		"frameB": {0.98, 0.02, 0},
		"frameC": {0, 1, 0},
	}
	service := newTestService(t, table,
		facenetRef(1, 1, 0, 0),
		facenetRef(2, 0, 1, 0),
	)

	dec, err := service.Recognize(context.Background(), [][]byte{
		[]byte("frameA"), []byte("frameB"), []byte("frameC"),
	})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if !dec.Accepted || dec.StudentID != 1 {
		t.Errorf("expected student 1 accepted with 2/3 frames, got %+v", dec)
	}
	if dec.Frames != 3 || dec.Votes != 2 {
		t.Errorf("expected 2 votes over 3 frames, got %+v", dec)
	}
}

func TestRecognize_SplitRejects(t *testing.T) {
	table := map[string][]float32{
		"frameA": {1, 0, 0},
		"frameB": {0, 1, 0},
	}
	service := newTestService(t, table,
		facenetRef(1, 1, 0, 0),
		facenetRef(2, 0, 1, 0),
	)

	dec, err := service.Recognize(context.Background(), [][]byte{
		[]byte("frameA"), []byte("frameB"),
	})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if dec.Accepted {
		t.Errorf("expected 1-1 split to be rejected, got %+v", dec)
	}
}

func TestRecognize_UndecodableFramesAreSkipped(t *testing.T) {
	table := map[string][]float32{
		"frameA": {1, 0, 0},
	}
	service := newTestService(t, table, facenetRef(1, 1, 0, 0))

	// Two garbage frames are dropped before voting; the single surviving
	// frame carries a 1/1 majority.
	dec, err := service.Recognize(context.Background(), [][]byte{
		[]byte("garbage1"), []byte("frameA"), []byte("garbage2"),
	})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if !dec.Accepted || dec.StudentID != 1 {
		t.Errorf("expected acceptance from the single decodable frame, got %+v", dec)
	}
	if dec.Frames != 1 {
		t.Errorf("expected only 1 voting frame, got %d", dec.Frames)
	}
}

func TestRecognize_AllFramesUndecodable(t *testing.T) {
	service := newTestService(t, map[string][]float32{}, facenetRef(1, 1, 0, 0))

	dec, err := service.Recognize(context.Background(), [][]byte{[]byte("junk")})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if dec.Accepted || dec.Frames != 0 {
		t.Errorf("expected rejection with no voting frames, got %+v", dec)
	}
}

func TestRecognize_UnknownFaceRejected(t *testing.T) {
	table := map[string][]float32{
		"frameA": {0, 0, 1},
	}
	service := newTestService(t, table, facenetRef(1, 1, 0, 0))

	dec, err := service.Recognize(context.Background(), [][]byte{[]byte("frameA")})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if dec.Accepted {
		t.Errorf("expected a distant face to be rejected, got %+v", dec)
	}
}

func TestRecognize_LargeSetIsExact(t *testing.T) {
	// Enough references to cross the snapshot's index cutoff; the verdict
	// must still be the true nearest reference, exactly as with a small set.
	refs := make([]store.Reference, 0, 300)
	for i := range 300 {
		angle := float64(i) / 300 * 2 * math.Pi
		refs = append(refs, facenetRef(int64(i),
			float32(math.Cos(angle)), float32(math.Sin(angle)), 0))
	}

	// Query sits a hair off student 137's angle.
	angle := 137.2 / 300 * 2 * math.Pi
	table := map[string][]float32{
		"frameA": {float32(math.Cos(angle)), float32(math.Sin(angle)), 0},
	}
	service := newTestService(t, table, refs...)

	snap, err := service.cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	if !snap.Indexed() {
		t.Fatal("expected the similarity index to be built at this size")
	}

	dec, err := service.Recognize(context.Background(), [][]byte{[]byte("frameA")})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if !dec.Accepted || dec.StudentID != 137 {
		t.Errorf("expected the true nearest reference (student 137), got %+v", dec)
	}
}

func TestEnrollFromImage(t *testing.T) {
	table := map[string][]float32{
		"portrait": {1, 0, 0},
	}
	service := newTestService(t, table)
	ctx := context.Background()

	ok, err := service.EnrollFromImage(ctx, []byte("portrait"), 7)
	if err != nil {
		t.Fatalf("failed to enroll: %v", err)
	}
	if !ok {
		t.Fatal("expected enrollment to succeed")
	}

	dec, err := service.Recognize(ctx, [][]byte{[]byte("portrait")})
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if !dec.Accepted || dec.StudentID != 7 {
		t.Errorf("expected the enrolled student to be recognized, got %+v", dec)
	}
}

func TestEnrollFromImage_NoFace(t *testing.T) {
	service := newTestService(t, map[string][]float32{})

	ok, err := service.EnrollFromImage(context.Background(), []byte("junk"), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected enrollment to report no usable face")
	}
}
