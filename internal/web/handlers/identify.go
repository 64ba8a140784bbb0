package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// maxImageUploadSize limits probe image uploads to 10 MB.
const maxImageUploadSize = 10 << 20

// Embedder turns a face image into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, imageData []byte) ([]float32, error)
}

// IdentifyHandler handles probe identification requests.
type IdentifyHandler struct {
	service  *attendance.Service
	embedder Embedder
}

// NewIdentifyHandler creates an identify handler. The embedder may be nil
// when no embedding provider is configured; image uploads are then rejected
// and callers must send precomputed embeddings.
func NewIdentifyHandler(service *attendance.Service, embedder Embedder) *IdentifyHandler {
	return &IdentifyHandler{service: service, embedder: embedder}
}

// IdentifyRequest carries a precomputed probe embedding.
type IdentifyRequest struct {
	Embedding []float32 `json:"embedding"`
}

// IdentifyResponse describes the outcome of one identification attempt.
type IdentifyResponse struct {
	Outcome     string         `json:"outcome"`
	IdentityID  string         `json:"identity_id,omitempty"`
	DisplayName string         `json:"display_name,omitempty"`
	Similarity  float64        `json:"similarity,omitempty"`
	Event       *EventResponse `json:"event,omitempty"`
	Message     string         `json:"message,omitempty"`
}

func outcomeName(kind attendance.OutcomeKind) string {
	switch kind {
	case attendance.OutcomeRecorded:
		return "recorded"
	case attendance.OutcomeRejected:
		return "rejected"
	default:
		return "no_match"
	}
}

// Identify accepts either a JSON body with a precomputed embedding or a
// multipart form with an "image" file that is sent to the embedding provider.
// At most one attendance event is written per call.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	probe, ok := h.probeFromRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Identify(r.Context(), probe)
	if err != nil {
		log.Printf("identify failed: %v", err)
		respondError(w, http.StatusInternalServerError, "identification failed")
		return
	}

	resp := IdentifyResponse{
		Outcome:     outcomeName(outcome.Kind),
		IdentityID:  outcome.IdentityID,
		DisplayName: outcome.DisplayName,
		Similarity:  outcome.Similarity,
		Message:     outcome.Message,
	}
	if outcome.Event != nil {
		ev := eventToResponse(*outcome.Event)
		resp.Event = &ev
	}
	respondJSON(w, http.StatusOK, resp)
}

// probeFromRequest extracts the probe embedding from the request, either
// directly from JSON or by embedding an uploaded image. On failure it writes
// the error response and returns ok=false.
func (h *IdentifyHandler) probeFromRequest(w http.ResponseWriter, r *http.Request) ([]float32, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.probeFromImage(w, r)
	}

	var req IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, false
	}
	if len(req.Embedding) == 0 {
		respondError(w, http.StatusBadRequest, "embedding is required")
		return nil, false
	}
	return req.Embedding, true
}

func (h *IdentifyHandler) probeFromImage(w http.ResponseWriter, r *http.Request) ([]float32, bool) {
	if h.embedder == nil {
		respondError(w, http.StatusBadRequest, "no embedding provider configured; send a precomputed embedding")
		return nil, false
	}

	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return nil, false
	}

	probe, err := h.embedder.Embed(r.Context(), data)
	switch {
	case errors.Is(err, embedding.ErrFaceNotDetected):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
		return nil, false
	case errors.Is(err, embedding.ErrFaceTooSmall):
		respondError(w, http.StatusUnprocessableEntity, "detected face is too small")
		return nil, false
	case err != nil:
		log.Printf("embedding provider failed: %v", err)
		respondError(w, http.StatusBadGateway, "embedding provider unavailable")
		return nil, false
	}
	return probe, true
}
