package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	ledger database.AttendanceStore
}

// NewAttendanceHandler creates an attendance handler over the given ledger.
func NewAttendanceHandler(ledger database.AttendanceStore) *AttendanceHandler {
	return &AttendanceHandler{ledger: ledger}
}

// EventResponse represents one attendance event in API responses.
type EventResponse struct {
	ID          string `json:"id"`
	IdentityID  string `json:"identity_id"`
	DisplayName string `json:"display_name"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
}

func eventToResponse(ev database.AttendanceEvent) EventResponse {
	return EventResponse{
		ID:          ev.ID,
		IdentityID:  ev.IdentityID,
		DisplayName: ev.DisplayName,
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
		Type:        string(ev.Type),
	}
}

// List returns all attendance events, newest first.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.ledger.List(r.Context())
	if err != nil {
		log.Printf("listing attendance failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}

	response := make([]EventResponse, len(events))
	for i := range events {
		response[i] = eventToResponse(events[i])
	}
	respondJSON(w, http.StatusOK, response)
}

// Clear wipes the whole ledger.
func (h *AttendanceHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Clear(r.Context()); err != nil {
		log.Printf("clearing attendance failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to clear attendance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
