package embedding

// Variant identifies the algorithm that produced an embedding. Embeddings
// from different variants live in different vector spaces and must never be
// compared against each other.
type Variant string

const (
	// VariantFacenet is the neural embedding computed by the embedding server.
	VariantFacenet Variant = "facenet"
	// VariantPixel is the deterministic grayscale pixel-statistics fallback.
	VariantPixel Variant = "pixel"
)

// Embedding is a fixed-length feature vector tagged with the variant that
// produced it. Immutable once created.
type Embedding struct {
	Variant Variant
	Vector  []float32
}

// Comparable reports whether two embeddings can be meaningfully compared:
// same variant, same dimensionality, non-empty.
func (e Embedding) Comparable(other Embedding) bool {
	return e.Variant == other.Variant &&
		len(e.Vector) == len(other.Vector) &&
		len(e.Vector) > 0
}

// Dim returns the vector dimensionality.
func (e Embedding) Dim() int {
	return len(e.Vector)
}
