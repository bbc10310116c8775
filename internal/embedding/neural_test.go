package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeEmbeddingServer(t *testing.T, resp faceResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/embed/face":
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				http.Error(w, "bad multipart", http.StatusBadRequest)
				return
			}
			if _, _, err := r.FormFile("file"); err != nil {
				http.Error(w, "missing file part", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNeuralExtract_PicksHighestScoringFace(t *testing.T) {
	server := newFakeEmbeddingServer(t, faceResponse{
		FacesCount: 2,
		Faces: []faceDetection{
			{FaceIndex: 0, Dim: 3, Embedding: []float32{1, 0, 0}, DetScore: 0.55},
			{FaceIndex: 1, Dim: 3, Embedding: []float32{0, 1, 0}, DetScore: 0.92},
		},
		Model: "facenet512",
	})
	defer server.Close()

	extractor := NewNeuralExtractor(server.URL, 3)
	emb, ok := extractor.Extract(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00})
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if emb.Variant != VariantFacenet {
		t.Errorf("expected facenet variant, got %q", emb.Variant)
	}
	if emb.Vector[1] != 1 {
		t.Errorf("expected the higher-scoring face's embedding, got %v", emb.Vector)
	}
}

func TestNeuralExtract_NoFaces(t *testing.T) {
	server := newFakeEmbeddingServer(t, faceResponse{FacesCount: 0, Model: "facenet512"})
	defer server.Close()

	extractor := NewNeuralExtractor(server.URL, 3)
	if _, ok := extractor.Extract(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0, 0, 0, 0, 0}); ok {
		t.Error("expected extraction to fail when no faces are detected")
	}
}

func TestNeuralExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := NewNeuralExtractor(server.URL, 3)
	if _, ok := extractor.Extract(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0, 0, 0, 0, 0}); ok {
		t.Error("expected extraction to fail on server error")
	}
}

func TestNeuralPing(t *testing.T) {
	server := newFakeEmbeddingServer(t, faceResponse{})
	defer server.Close()

	extractor := NewNeuralExtractor(server.URL, 512)
	if err := extractor.Ping(context.Background()); err != nil {
		t.Errorf("expected health check to pass: %v", err)
	}

	server.Close()
	if err := extractor.Ping(context.Background()); err == nil {
		t.Error("expected health check to fail against a closed server")
	}
}

func TestSelect_FallsBackToPixel(t *testing.T) {
	// Nothing listens on this port.
	extractor := Select(context.Background(), "http://127.0.0.1:1", 512)
	if extractor.Variant() != VariantPixel {
		t.Errorf("expected pixel fallback, got %q", extractor.Variant())
	}
}

func TestSelect_PrefersNeural(t *testing.T) {
	server := newFakeEmbeddingServer(t, faceResponse{})
	defer server.Close()

	extractor := Select(context.Background(), server.URL, 512)
	if extractor.Variant() != VariantFacenet {
		t.Errorf("expected neural extractor, got %q", extractor.Variant())
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, "image/gif"},
		{"too short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte{0, 1, 2, 3, 4, 5, 6, 7}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("detectMIMEType() = %q, want %q", got, tt.expected)
			}
		})
	}
}
