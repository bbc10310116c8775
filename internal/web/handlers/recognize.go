package handlers

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"attendcore/internal/attendance"
	"attendcore/internal/recognizer"
)

// RecognizeHandler handles the live-capture recognition endpoint.
type RecognizeHandler struct {
	service  *recognizer.Service
	recorder *attendance.Recorder // nil when no timetable/ledger is configured
}

// NewRecognizeHandler creates a new handler. The recorder may be nil; the
// endpoint then returns the recognition result without attendance context.
func NewRecognizeHandler(service *recognizer.Service, recorder *attendance.Recorder) *RecognizeHandler {
	return &RecognizeHandler{service: service, recorder: recorder}
}

// RecognizeResponse is the JSON response of the recognize endpoint.
type RecognizeResponse struct {
	RequestID  string               `json:"request_id"`
	StudentID  *int64               `json:"student_id"`
	Status     string               `json:"status"` // "accepted" or "rejected"
	Frames     int                  `json:"frames"`
	Attendance *attendance.Decision `json:"attendance,omitempty"`
}

// Recognize accepts a multipart burst of frames ("file" parts), runs the
// consensus pipeline and, on an accepted match, resolves the attendance
// decision.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "at least one frame is required")
		return
	}

	frames := make([][]byte, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read frame")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read frame")
			return
		}
		frames = append(frames, data)
	}

	requestID := uuid.NewString()

	dec, err := h.service.Recognize(r.Context(), frames)
	if err != nil {
		log.Printf("recognition %s failed: %v", requestID, err)
		respondError(w, http.StatusInternalServerError, "recognition failed")
		return
	}

	resp := RecognizeResponse{
		RequestID: requestID,
		Status:    "rejected",
		Frames:    dec.Frames,
	}
	if !dec.Accepted {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	studentID := dec.StudentID
	resp.StudentID = &studentID
	resp.Status = "accepted"

	if h.recorder != nil {
		attDec, err := h.recorder.ResolveAndDecide(r.Context(), studentID, time.Now())
		if err != nil {
			log.Printf("attendance decision %s failed for student %d: %v", requestID, studentID, err)
			respondError(w, http.StatusInternalServerError, "attendance decision failed")
			return
		}
		resp.Attendance = &attDec
	}

	respondJSON(w, http.StatusOK, resp)
}
