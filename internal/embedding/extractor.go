package embedding

import (
	"context"
	"log"
)

// Extractor turns a raw image into an embedding.
//
// The boolean result is false when no embedding could be derived: the image
// failed to decode, the backend is unreachable, or no face was found.
// Extraction failures are normal outcomes, not errors, so callers can skip
// the frame and move on.
type Extractor interface {
	Name() string
	Variant() Variant
	Extract(ctx context.Context, imageData []byte) (Embedding, bool)
}

// Select picks the extractor variant once at process start. It probes the
// embedding server and returns the neural extractor when it is reachable,
// the pixel fallback otherwise. The choice is fixed for the process lifetime
// so all embeddings produced by one process share a variant.
func Select(ctx context.Context, serverURL string, dim int) Extractor {
	neural := NewNeuralExtractor(serverURL, dim)
	if err := neural.Ping(ctx); err != nil {
		log.Printf("embedding server unavailable (%v), falling back to pixel extractor", err)
		return NewPixelExtractor()
	}
	log.Printf("using neural embedding server at %s (dim %d)", serverURL, dim)
	return neural
}
