package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"attendcore/internal/recognizer"
	"attendcore/internal/store"
)

// EnrollHandler handles reference-embedding enrollment endpoints.
type EnrollHandler struct {
	service *recognizer.Service
	cache   *store.Cache
}

// NewEnrollHandler creates a new handler.
func NewEnrollHandler(service *recognizer.Service, cache *store.Cache) *EnrollHandler {
	return &EnrollHandler{service: service, cache: cache}
}

// EnrollResponse is the JSON response of the enroll endpoint.
type EnrollResponse struct {
	Success   bool   `json:"success"`
	StudentID int64  `json:"student_id"`
	Variant   string `json:"variant,omitempty"`
}

// studentIDParam parses the {id} route parameter.
func studentIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Enroll accepts a single photo ("file" part) and stores the extracted
// embedding as the student's reference, replacing any prior one. Responds
// success=false when no embedding could be derived from the photo.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	enrolled, err := h.service.EnrollFromImage(r.Context(), data, studentID)
	if err != nil {
		log.Printf("enrollment failed for student %d: %v", studentID, err)
		respondError(w, http.StatusInternalServerError, "enrollment failed")
		return
	}

	resp := EnrollResponse{Success: enrolled, StudentID: studentID}
	if enrolled {
		resp.Variant = string(h.service.Extractor().Variant())
	}
	respondJSON(w, http.StatusOK, resp)
}

// SimilarResponse is the JSON response of the similar-references endpoint.
type SimilarResponse struct {
	StudentID int64             `json:"student_id"`
	Neighbors []SimilarNeighbor `json:"neighbors"`
	// Approximate is true when the lookup went through the index instead
	// of an exact scan.
	Approximate bool `json:"approximate"`
}

// SimilarNeighbor is one nearby enrolled reference.
type SimilarNeighbor struct {
	StudentID int64   `json:"student_id"`
	Distance  float64 `json:"distance"`
}

// Similar lists the enrolled references nearest to the student's own,
// an operator aid for spotting the same face enrolled under two IDs.
// Recognition does not use this lookup.
func (h *EnrollHandler) Similar(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	snap, err := h.cache.Snapshot(r.Context())
	if err != nil {
		log.Printf("loading references for similar lookup: %v", err)
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	if snap.Get(studentID) == nil {
		respondError(w, http.StatusNotFound, "student has no reference")
		return
	}

	resp := SimilarResponse{
		StudentID:   studentID,
		Neighbors:   []SimilarNeighbor{},
		Approximate: snap.Indexed(),
	}
	for _, n := range snap.Similar(studentID, limit) {
		resp.Neighbors = append(resp.Neighbors, SimilarNeighbor{
			StudentID: n.StudentID,
			Distance:  n.Distance,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// Delete removes the student's reference embedding.
func (h *EnrollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	if err := h.cache.Delete(r.Context(), studentID); err != nil {
		log.Printf("deleting reference for student %d: %v", studentID, err)
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "student_id": studentID})
}
