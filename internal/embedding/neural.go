package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	defaultServerURL = "http://localhost:8000"
	defaultDim       = 512

	requestTimeout = 15 * time.Second
)

// NeuralExtractor computes face embeddings using the embedding server.
type NeuralExtractor struct {
	baseURL string
	dim     int
	client  *http.Client
}

// NewNeuralExtractor creates a new extractor backed by the embedding server.
func NewNeuralExtractor(baseURL string, dim int) *NeuralExtractor {
	if baseURL == "" {
		baseURL = defaultServerURL
	}
	if dim <= 0 {
		dim = defaultDim
	}
	return &NeuralExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Name returns the extractor name.
func (e *NeuralExtractor) Name() string {
	return "neural"
}

// Variant returns the variant tag for embeddings produced by this extractor.
func (e *NeuralExtractor) Variant() Variant {
	return VariantFacenet
}

// Ping checks whether the embedding server is reachable.
func (e *NeuralExtractor) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding server not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding server health check failed (status %d)", resp.StatusCode)
	}
	return nil
}

// faceDetection represents a single detected face from the server.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	DetScore  float64   `json:"det_score"`
}

// faceResponse represents the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Extract computes the embedding for the most confident face in the image.
// Returns false when the server errors, no face is detected or the returned
// embedding is empty.
func (e *NeuralExtractor) Extract(ctx context.Context, imageData []byte) (Embedding, bool) {
	body, err := e.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		log.Printf("neural extraction failed: %v", err)
		return Embedding{}, false
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		log.Printf("neural extraction: invalid response: %v", err)
		return Embedding{}, false
	}

	// Pick the face with the highest detection score.
	var best *faceDetection
	for i := range faceResp.Faces {
		f := &faceResp.Faces[i]
		if len(f.Embedding) == 0 {
			continue
		}
		if best == nil || f.DetScore > best.DetScore {
			best = f
		}
	}
	if best == nil {
		return Embedding{}, false
	}

	return Embedding{Variant: VariantFacenet, Vector: best.Embedding}, true
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint. The part carries an explicit Content-Type
// header based on magic byte detection.
func (e *NeuralExtractor) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType detects the MIME type from image data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
