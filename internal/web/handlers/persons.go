package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// PersonsHandler manages the enrollment registry.
type PersonsHandler struct {
	enrollments database.EnrollmentStore
}

// NewPersonsHandler creates a persons handler over the given store.
func NewPersonsHandler(enrollments database.EnrollmentStore) *PersonsHandler {
	return &PersonsHandler{enrollments: enrollments}
}

// PersonResponse represents an enrolled person in API responses.
// Embeddings are never returned, only their dimension.
type PersonResponse struct {
	IdentityID   string `json:"identity_id"`
	DisplayName  string `json:"display_name"`
	EmbeddingDim int    `json:"embedding_dim"`
	EnrolledAt   string `json:"enrolled_at"`
}

func personToResponse(e database.Enrollment) PersonResponse {
	return PersonResponse{
		IdentityID:   e.IdentityID,
		DisplayName:  e.DisplayName,
		EmbeddingDim: len(e.Embedding),
		EnrolledAt:   e.EnrolledAt.Format(time.RFC3339),
	}
}

// EnrollRequest is the request body for enrolling or replacing a person.
type EnrollRequest struct {
	IdentityID  string    `json:"identity_id"`
	DisplayName string    `json:"display_name"`
	Embedding   []float32 `json:"embedding"`
}

func (req *EnrollRequest) validate() string {
	switch {
	case req.IdentityID == "":
		return "identity_id is required"
	case req.DisplayName == "":
		return "display_name is required"
	case len(req.Embedding) == 0:
		return "embedding is required"
	default:
		return ""
	}
}

// List returns all enrolled persons.
func (h *PersonsHandler) List(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.enrollments.List(r.Context())
	if err != nil {
		log.Printf("listing enrollments failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list persons")
		return
	}

	response := make([]PersonResponse, len(enrollments))
	for i := range enrollments {
		response[i] = personToResponse(enrollments[i])
	}
	respondJSON(w, http.StatusOK, response)
}

// Get returns a single person by identity ID.
func (h *PersonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	enrollment, err := h.enrollments.Get(r.Context(), id)
	if err != nil {
		log.Printf("getting enrollment %s failed: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get person")
		return
	}
	if enrollment == nil {
		respondError(w, http.StatusNotFound, "person not found")
		return
	}
	respondJSON(w, http.StatusOK, personToResponse(*enrollment))
}

// Enroll registers a new person. Enrolling an already known identity ID is a
// conflict; use Replace to update an existing embedding.
func (h *PersonsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	enrollment := database.Enrollment{
		IdentityID:  req.IdentityID,
		DisplayName: req.DisplayName,
		Embedding:   req.Embedding,
		EnrolledAt:  time.Now(),
	}
	err := h.enrollments.Enroll(r.Context(), enrollment)
	if errors.Is(err, database.ErrDuplicateIdentity) {
		respondError(w, http.StatusConflict, "identity already enrolled")
		return
	}
	if err != nil {
		log.Printf("enrolling %s failed: %v", sanitizeForLog(req.IdentityID), err)
		respondError(w, http.StatusInternalServerError, "failed to enroll person")
		return
	}
	respondJSON(w, http.StatusCreated, personToResponse(enrollment))
}

// ReplaceRequest is the request body for replacing a person's enrollment.
type ReplaceRequest struct {
	DisplayName string    `json:"display_name"`
	Embedding   []float32 `json:"embedding"`
}

// Replace overwrites the enrollment for an identity ID, creating it if it
// does not exist yet.
func (h *PersonsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "display_name is required")
		return
	}
	if len(req.Embedding) == 0 {
		respondError(w, http.StatusBadRequest, "embedding is required")
		return
	}

	enrollment := database.Enrollment{
		IdentityID:  id,
		DisplayName: req.DisplayName,
		Embedding:   req.Embedding,
		EnrolledAt:  time.Now(),
	}
	if err := h.enrollments.Replace(r.Context(), enrollment); err != nil {
		log.Printf("replacing %s failed: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to replace person")
		return
	}
	respondJSON(w, http.StatusOK, personToResponse(enrollment))
}

// Delete removes a person by identity ID. Deleting an unknown ID is a no-op.
func (h *PersonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.enrollments.Delete(r.Context(), id); err != nil {
		log.Printf("deleting %s failed: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete person")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
