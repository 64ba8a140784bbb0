package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process liveness and database connectivity.
type HealthHandler struct {
	pinger Pinger
}

// NewHealthHandler creates a health handler. A nil pinger means the service
// runs on the in-memory store and the database field is reported as such.
func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Check handles the health check endpoint.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"database": "memory",
	}
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":   "degraded",
				"database": "unreachable",
			})
			return
		}
		resp["database"] = "connected"
	}
	respondJSON(w, http.StatusOK, resp)
}
