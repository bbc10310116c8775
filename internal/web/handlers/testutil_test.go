package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"attendcore/internal/embedding"
	"attendcore/internal/match"
	"attendcore/internal/recognizer"
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

// testService builds a recognition service over an in-memory store seeded
// with the given references.
func testService(t *testing.T, table map[string][]float32, refs ...store.Reference) (*recognizer.Service, *store.Cache) {
	t.Helper()
	cache := store.NewCache(store.NewMemoryStore(), nil)
	ctx := context.Background()
	for _, ref := range refs {
		if err := cache.Enroll(ctx, ref); err != nil {
			t.Fatalf("failed to seed reference: %v", err)
		}
	}
	service := recognizer.New(&tableExtractor{table: table}, match.NewMatcher(-1, -1), cache)
	return service, cache
}

func facenetRef(id int64, vec ...float32) store.Reference {
	return store.Reference{
		StudentID: id,
		Embedding: embedding.Embedding{Variant: embedding.VariantFacenet, Vector: vec},
	}
}

// multipartBody builds a multipart form with one "file" part per frame.
func multipartBody(t *testing.T, frames ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, frame := range frames {
		part, err := writer.CreateFormFile("file", "frame.jpg")
		if err != nil {
			t.Fatalf("failed to create form file %d: %v", i, err)
		}
		if _, err := part.Write(frame); err != nil {
			t.Fatalf("failed to write frame %d: %v", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newMultipartRequest(t *testing.T, method, path string, frames ...[]byte) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, frames...)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}
