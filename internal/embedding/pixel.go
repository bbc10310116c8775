package embedding

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// pixelGridSize is the side length of the downsampled grayscale grid.
	pixelGridSize = 64
	// PixelDim is the dimensionality of pixel-variant embeddings.
	PixelDim = pixelGridSize * pixelGridSize
)

// PixelExtractor is the deterministic fallback: it downsamples the image to a
// 64x64 grayscale grid and flattens it into a vector scaled to [0, 1]. Much
// weaker than the neural embedding but works without any external capability.
type PixelExtractor struct{}

// NewPixelExtractor creates the fallback extractor.
func NewPixelExtractor() *PixelExtractor {
	return &PixelExtractor{}
}

// Name returns the extractor name.
func (e *PixelExtractor) Name() string {
	return "pixel"
}

// Variant returns the variant tag for embeddings produced by this extractor.
func (e *PixelExtractor) Variant() Variant {
	return VariantPixel
}

// Extract decodes the image and computes the pixel-statistics vector.
// Returns false when the image cannot be decoded.
func (e *PixelExtractor) Extract(_ context.Context, imageData []byte) (Embedding, bool) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return Embedding{}, false
	}

	resized := image.NewRGBA(image.Rect(0, 0, pixelGridSize, pixelGridSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	vector := make([]float32, 0, PixelDim)
	for y := range pixelGridSize {
		for x := range pixelGridSize {
			r, g, b, _ := resized.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			vector = append(vector, float32(luma/255.0))
		}
	}

	return Embedding{Variant: VariantPixel, Vector: vector}, true
}
